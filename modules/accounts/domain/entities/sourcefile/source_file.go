package sourcefile

import (
	"context"
	"time"
)

// Sources records can be tagged with at upload time.
var Sources = []string{"A", "B", "C"}

func IsValidSource(s string) bool {
	for _, source := range Sources {
		if source == s {
			return true
		}
	}
	return false
}

// SourceFile is the provenance of an import batch. Count is finalized after
// the batch completes and holds the number of rows actually imported.
type SourceFile struct {
	ID         uint
	FileName   string
	Source     string
	Count      int
	UploadedAt time.Time
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*SourceFile, error)
	List(ctx context.Context) ([]*SourceFile, error)
	Create(ctx context.Context, f *SourceFile) error
	SetCount(ctx context.Context, id uint, count int) error
	Delete(ctx context.Context, id uint) (int64, error)
}
