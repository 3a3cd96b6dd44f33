package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const jobColumns = "id, magnet, info_hash, display_name, target_dir, state, pid, exit_code, error_message, created_at, updated_at"

// Record inserts job. An empty ID is assigned a new UUID and zero timestamps
// are set to now.
func (s *Store) Record(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("record job: nil job")
	}
	if job.Magnet == "" {
		return errors.New("record job: magnet is required")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.State == "" {
		job.State = StateLaunched
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	_, err := s.execWithRetry(ctx,
		`INSERT INTO download_jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Magnet,
		nullableString(job.InfoHash),
		nullableString(job.DisplayName),
		job.TargetDir,
		string(job.State),
		nullableInt(job.PID),
		nullableIntPtr(job.ExitCode),
		nullableString(job.Error),
		job.CreatedAt.Format(time.RFC3339Nano),
		job.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// MarkExited records the observed exit of a launched job.
func (s *Store) MarkExited(ctx context.Context, id string, exitCode int, message string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE download_jobs SET state = ?, exit_code = ?, error_message = COALESCE(?, error_message), updated_at = ? WHERE id = ?`,
		string(StateExited),
		exitCode,
		nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark job exited: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mark job exited: job %s not found", id)
	}
	return nil
}

// Get returns the job with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM download_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs ordered by creation time. A non-empty targetDir limits the
// result to jobs downloading into that directory.
func (s *Store) List(ctx context.Context, targetDir string) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM download_jobs`
	var args []any
	if targetDir != "" {
		query += ` WHERE target_dir = ?`
		args = append(args, targetDir)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}

// Clear removes jobs that are no longer running. A non-empty targetDir limits
// the removal to that directory.
func (s *Store) Clear(ctx context.Context, targetDir string) (int64, error) {
	query := `DELETE FROM download_jobs WHERE state != ?`
	args := []any{string(StateLaunched)}
	if targetDir != "" {
		query += ` AND target_dir = ?`
		args = append(args, targetDir)
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

// Reconcile marks launched jobs whose process is gone as exited. Jobs
// launched by an earlier command invocation have no reaper, so their exit is
// only noticed here. alive decides per job; it must not trust a bare pid,
// since pids are recycled. The exit code of such jobs is unknown and stored
// as -1.
func (s *Store) Reconcile(ctx context.Context, targetDir string, alive func(job *Job) bool) (int, error) {
	list, err := s.List(ctx, targetDir)
	if err != nil {
		return 0, err
	}
	reconciled := 0
	for _, job := range list {
		if !job.Running() || (job.PID > 0 && alive(job)) {
			continue
		}
		if err := s.MarkExited(ctx, job.ID, -1, "process no longer running"); err != nil {
			return reconciled, err
		}
		reconciled++
	}
	return reconciled, nil
}

// CountRunning returns how many jobs for targetDir are still recorded as
// launched. Call Reconcile first to drop jobs whose process is gone.
func (s *Store) CountRunning(ctx context.Context, targetDir string) (int, error) {
	var n int
	err := retryOnBusy(ensureContext(ctx), func() error {
		return s.db.QueryRowContext(ensureContext(ctx),
			`SELECT COUNT(*) FROM download_jobs WHERE state = ? AND target_dir = ?`,
			string(StateLaunched), targetDir,
		).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count running jobs: %w", err)
	}
	return n, nil
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id          string
		magnet      string
		infoHash    sql.NullString
		displayName sql.NullString
		targetDir   string
		state       string
		pid         sql.NullInt64
		exitCode    sql.NullInt64
		errorMsg    sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&id, &magnet, &infoHash, &displayName, &targetDir, &state, &pid, &exitCode, &errorMsg, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	job := &Job{
		ID:          id,
		Magnet:      magnet,
		InfoHash:    infoHash.String,
		DisplayName: displayName.String,
		TargetDir:   targetDir,
		State:       State(state),
		PID:         int(pid.Int64),
		Error:       errorMsg.String,
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		job.ExitCode = &code
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableIntPtr(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
