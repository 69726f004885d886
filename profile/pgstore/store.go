// Package pgstore is the Postgres profile backend
package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/internal/utils"
	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/pkg/errors"
)

// Schema creates the profiles table
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
  user_id             TEXT PRIMARY KEY,
  role                TEXT NOT NULL,
  school              TEXT,
  major               TEXT,
  gpa                 DOUBLE PRECISION,
  degree_level        TEXT,
  company             TEXT,
  job_title           TEXT,
  linkedin_url        TEXT NOT NULL DEFAULT '',
  bio                 TEXT NOT NULL DEFAULT '',
  profile_picture_key TEXT NOT NULL DEFAULT '',
  resume_key          TEXT NOT NULL DEFAULT '',
  updated_at          TIMESTAMPTZ NOT NULL
)`

const selectRecord = `
SELECT user_id, role, school, major, gpa, degree_level, company, job_title,
       linkedin_url, bio, profile_picture_key, resume_key, updated_at
FROM profiles
WHERE user_id = $1`

const upsertRecord = `
INSERT INTO profiles (user_id, role, school, major, gpa, degree_level, company, job_title,
                      linkedin_url, bio, profile_picture_key, resume_key, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (user_id) DO UPDATE SET
  role = EXCLUDED.role,
  school = EXCLUDED.school,
  major = EXCLUDED.major,
  gpa = EXCLUDED.gpa,
  degree_level = EXCLUDED.degree_level,
  company = EXCLUDED.company,
  job_title = EXCLUDED.job_title,
  linkedin_url = EXCLUDED.linkedin_url,
  bio = EXCLUDED.bio,
  profile_picture_key = EXCLUDED.profile_picture_key,
  resume_key = EXCLUDED.resume_key,
  updated_at = EXCLUDED.updated_at`

// Store reads and writes profile records in Postgres
type Store struct {
	pool    *pgxpool.Pool
	nowTime func() time.Time
}

var _ profile.Repo = (*Store)(nil)

// NewStore creates a profile store over an existing pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, nowTime: time.Now}
}

// Connect opens a pool, checks connectivity and ensures the schema exists
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[pgstore.Connect] failed to parse database config")
	}
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "[pgstore.Connect] failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "[pgstore.Connect] failed to ping database")
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "[pgstore.Connect] failed to create schema")
	}
	return pool, nil
}

func (s *Store) GetRecord(ctx context.Context, key string) (*profile.Record, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, selectRecord, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[pgstore.GetRecord]")
	}
	return rec, nil
}

func (s *Store) PutRecord(ctx context.Context, record *profile.Record) error {
	if record == nil || record.UserID == "" {
		return errors.New("[pgstore.PutRecord] user id is required")
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = s.nowTime()
	}
	if _, err := s.pool.Exec(ctx, upsertRecord, recordArgs(record)...); err != nil {
		return errors.Wrap(err, "[pgstore.PutRecord]")
	}
	return nil
}

// recordArgs flattens a record into upsertRecord's parameters
func recordArgs(r *profile.Record) []any {
	var (
		school, major, degreeLevel, company, jobTitle *string
		gpa                                           *float64
	)
	if r.StudentDetails != nil {
		school, major, degreeLevel = utils.Ptr(r.School), utils.Ptr(r.Major), utils.Ptr(r.DegreeLevel)
		gpa = utils.Ptr(r.GPA)
	}
	if r.MentorDetails != nil {
		company, jobTitle = utils.Ptr(r.Company), utils.Ptr(r.JobTitle)
	}
	return []any{
		r.UserID, string(r.Role), school, major, gpa, degreeLevel, company, jobTitle,
		r.LinkedinURL, r.Bio, r.ProfilePictureKey, r.ResumeKey, r.UpdatedAt,
	}
}

// scanRecord reads a row produced by selectRecord
func scanRecord(row pgx.Row) (*profile.Record, error) {
	var (
		rec                                           profile.Record
		role                                          string
		school, major, degreeLevel, company, jobTitle *string
		gpa                                           *float64
	)
	err := row.Scan(
		&rec.UserID,
		&role,
		&school,
		&major,
		&gpa,
		&degreeLevel,
		&company,
		&jobTitle,
		&rec.LinkedinURL,
		&rec.Bio,
		&rec.ProfilePictureKey,
		&rec.ResumeKey,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Role = identity.ParseRole(role)
	switch rec.Role {
	case identity.RoleStudent:
		rec.StudentDetails = &profile.StudentDetails{
			School:      utils.Value(school),
			Major:       utils.Value(major),
			GPA:         utils.Value(gpa),
			DegreeLevel: utils.Value(degreeLevel),
		}
	case identity.RoleMentor:
		rec.MentorDetails = &profile.MentorDetails{
			Company:  utils.Value(company),
			JobTitle: utils.Value(jobTitle),
		}
	}
	return &rec, nil
}
