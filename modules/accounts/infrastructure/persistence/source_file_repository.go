package persistence

import (
	"context"

	"github.com/iota-uz/mailstock/modules/accounts/domain/entities/sourcefile"
	"github.com/iota-uz/mailstock/modules/accounts/infrastructure/persistence/models"
	"github.com/iota-uz/mailstock/pkg/composables"
)

type SourceFileRepository struct{}

func NewSourceFileRepository() sourcefile.Repository {
	return &SourceFileRepository{}
}

func (r *SourceFileRepository) GetByID(ctx context.Context, id uint) (*sourcefile.SourceFile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.SourceFile
	if err := tx.QueryRow(
		ctx,
		`SELECT id, file_name, source, count, uploaded_at FROM source_files WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.FileName, &row.Source, &row.Count, &row.UploadedAt); err != nil {
		return nil, err
	}
	return toDomainSourceFile(&row), nil
}

func (r *SourceFileRepository) List(ctx context.Context) ([]*sourcefile.SourceFile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(
		ctx,
		`SELECT id, file_name, source, count, uploaded_at FROM source_files ORDER BY uploaded_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*sourcefile.SourceFile
	for rows.Next() {
		var row models.SourceFile
		if err := rows.Scan(&row.ID, &row.FileName, &row.Source, &row.Count, &row.UploadedAt); err != nil {
			return nil, err
		}
		results = append(results, toDomainSourceFile(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *SourceFileRepository) Create(ctx context.Context, f *sourcefile.SourceFile) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(
		ctx,
		`INSERT INTO source_files (file_name, source, count) VALUES ($1, $2, $3) RETURNING id, uploaded_at`,
		f.FileName,
		f.Source,
		f.Count,
	).Scan(&f.ID, &f.UploadedAt)
}

func (r *SourceFileRepository) SetCount(ctx context.Context, id uint, count int) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE source_files SET count = $1 WHERE id = $2`, count, id)
	return err
}

func (r *SourceFileRepository) Delete(ctx context.Context, id uint) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM source_files WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
