package warehouse

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// StageExtract clears the source's staging table and bulk-loads the file at
// path into it in fixed-size batches, returning the number of rows staged.
//
// Each batch is one COPY and commits on its own; a failure mid-run leaves
// the table partially populated, which is fine because the next run starts
// with the same unconditional delete. The reader is validated (file exists,
// header complete) before the delete, so a bad file never empties a
// staging table.
func StageExtract(ctx context.Context, pool *pgxpool.Pool, src Source, path string, log zerolog.Logger) (int64, error) {
	reader, err := OpenExtract(path, src.Headers())
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	if _, err := pool.Exec(ctx, "DELETE FROM "+src.Stage); err != nil {
		return 0, classifyError("staging "+src.Name, err)
	}
	log.Info().Str("table", src.Stage).Msg("cleared staging table")

	batch := make([][]any, 0, src.BatchSize)
	var total int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := pool.CopyFrom(ctx, pgx.Identifier{src.Stage}, src.DBColumns(), pgx.CopyFromRows(batch))
		if err != nil {
			return classifyError("staging "+src.Name, err)
		}
		total += n
		log.Info().
			Str("table", src.Stage).
			Int64("batch", n).
			Int64("total", total).
			Msg("staged batch")
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("read %s row %d: %w", path, reader.RowNum()+1, err)
		}

		row := make([]any, len(rec))
		for i, v := range rec {
			if v != nil {
				row[i] = *v
			}
		}
		batch = append(batch, row)

		if len(batch) == src.BatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}

	log.Info().Str("table", src.Stage).Int64("rows", total).Msg("staging complete")
	return total, nil
}
