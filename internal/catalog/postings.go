package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	upsertChunkSize = 5000
	lookupBatchSize = 500
	maxUpsertRetries = 3
)

// UpsertPostings writes postings for a track in chunks of
// upsertChunkSize rows, each chunk its own transaction. A chunk that
// fails with a transient or timeout error is attempted up to
// maxUpsertRetries times in all, with linear backoff between
// attempts, before the whole call fails; prior
// successful chunks remain committed, so a caller that gets an error
// back should treat the track's posting count as unknown and delete
// the track to reprocess, rather than assume an all-or-nothing write.
func (s *Store) UpsertPostings(ctx context.Context, trackID int64, postings []Posting) error {
	if len(postings) == 0 {
		return nil
	}

	for start := 0; start < len(postings); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(postings) {
			end = len(postings)
		}
		chunk := postings[start:end]

		var err error
		for attempt := 0; attempt < maxUpsertRetries; attempt++ {
			err = s.upsertChunk(ctx, trackID, chunk)
			if err == nil || !isRetryable(err) {
				break
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
			}
		}
		if err != nil {
			return err
		}
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE tracks SET fingerprint_count = $1 WHERE id = $2`, len(postings), trackID,
	); err != nil {
		return classifyPgError(err)
	}

	s.invalidateStats()
	return nil
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrTimeout)
}

func (s *Store) upsertChunk(ctx context.Context, trackID int64, chunk []Posting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyPgError(err)
	}
	defer tx.Rollback()

	valueStrings := make([]string, 0, len(chunk))
	args := make([]any, 0, len(chunk)*3)
	for i, p := range chunk {
		base := i*3 + 1
		valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d,$%d)", base, base+1, base+2))
		args = append(args, int64(p.Hash), trackID, p.TimeOffset)
	}

	query := fmt.Sprintf(`
		INSERT INTO postings (hash, track_id, time_offset)
		VALUES %s
		ON CONFLICT (hash, track_id, time_offset) DO NOTHING`,
		strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return classifyPgError(err)
	}

	if err := tx.Commit(); err != nil {
		return classifyPgError(err)
	}
	return nil
}

// LookupPostings fetches postings for a batch of hashes, querying in
// groups of lookupBatchSize so a large query fingerprint does not
// produce one unbounded IN/ANY clause.
func (s *Store) LookupPostings(ctx context.Context, hashes []uint64) (map[uint64][]Posting, error) {
	out := make(map[uint64][]Posting)
	if len(hashes) == 0 {
		return out, nil
	}

	for start := 0; start < len(hashes); start += lookupBatchSize {
		end := start + lookupBatchSize
		if end > len(hashes) {
			end = len(hashes)
		}
		batch := hashes[start:end]

		args := make([]int64, len(batch))
		for i, h := range batch {
			args[i] = int64(h)
		}

		rows, err := s.db.QueryContext(ctx,
			`SELECT hash, track_id, time_offset FROM postings WHERE hash = ANY($1)`, args)
		if err != nil {
			return nil, classifyPgError(err)
		}

		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var rawHash int64
				var p Posting
				if err := rows.Scan(&rawHash, &p.TrackID, &p.TimeOffset); err != nil {
					return err
				}
				p.Hash = uint64(rawHash)
				out[p.Hash] = append(out[p.Hash], p)
			}
			return rows.Err()
		}()
		if err != nil {
			return nil, classifyPgError(err)
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
	}

	return out, nil
}
