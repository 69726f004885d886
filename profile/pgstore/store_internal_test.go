package pgstore

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/stretchr/testify/require"
)

// fakeRow replays values into Scan destinations in column order
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case **string:
			if v != nil {
				s := v.(string)
				*d = &s
			}
		case **float64:
			if v != nil {
				f := v.(float64)
				*d = &f
			}
		case *time.Time:
			*d = v.(time.Time)
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

func TestScanRecord(t *testing.T) {
	updated := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("student", func(t *testing.T) {
		rec, err := scanRecord(fakeRow{values: []any{
			"jane@example.com", "student", "MIT", "CS", 3.9, "masters", nil, nil,
			"https://linkedin.com/in/jane", "bio", "", "resumes/jane/1.pdf", updated,
		}})
		require.NoError(t, err)
		require.Equal(t, identity.RoleStudent, rec.Role)
		require.NotNil(t, rec.StudentDetails)
		require.Nil(t, rec.MentorDetails)
		require.Equal(t, "masters", rec.DegreeLevel)
		require.InDelta(t, 3.9, rec.GPA, 0.0001)
		require.Equal(t, "resumes/jane/1.pdf", rec.ResumeKey)
		require.True(t, rec.Complete())
	})

	t.Run("mentor", func(t *testing.T) {
		rec, err := scanRecord(fakeRow{values: []any{
			"sam@example.com", "mentor", nil, nil, nil, nil, "Acme", "CTO",
			"", "", "", "", updated,
		}})
		require.NoError(t, err)
		require.Equal(t, "Acme", rec.Company)
		require.Nil(t, rec.StudentDetails)
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := scanRecord(fakeRow{err: pgx.ErrNoRows})
		require.ErrorIs(t, err, pgx.ErrNoRows)
	})
}

func TestRecordArgs(t *testing.T) {
	rec := &profile.Record{
		UserID:        "sam@example.com",
		Role:          identity.RoleMentor,
		MentorDetails: &profile.MentorDetails{Company: "Acme", JobTitle: "CTO"},
	}
	args := recordArgs(rec)
	require.Len(t, args, 13)
	require.Equal(t, "mentor", args[1])
	require.Nil(t, args[2].(*string))
	require.Nil(t, args[4].(*float64))
	require.Equal(t, "Acme", *args[6].(*string))
}
