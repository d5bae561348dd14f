package services

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/mailstock/modules/accounts/domain/aggregates/record"
	"github.com/iota-uz/mailstock/modules/accounts/domain/entities/sourcefile"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/eventbus"
	"github.com/iota-uz/mailstock/pkg/excel"
	"github.com/iota-uz/mailstock/pkg/metrics"
)

// positional column layout used when a sheet has no header row
const (
	colAccountID = iota
	colSecret
	colRecovery
	colProvider
	colPrice
)

var spreadsheetMimeTypes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-excel",
	"application/zip",
	"application/x-ole-storage",
}

type UploadedFile struct {
	// FileID is an opaque client-side correlation id, echoed back in the
	// per-file results.
	FileID   string
	FileName string
	Source   string
	Data     []byte
}

type FileImportResult struct {
	FileID   string `json:"file_id,omitempty"`
	FileName string `json:"file_name"`
	Imported int    `json:"imported"`
}

type ImportSummary struct {
	Message         string             `json:"message"`
	Files           []FileImportResult `json:"files"`
	DuplicateEmails []string           `json:"duplicate_emails"`
}

type ImportService struct {
	records   record.Repository
	files     sourcefile.Repository
	publisher eventbus.EventBus
}

func NewImportService(records record.Repository, files sourcefile.Repository, publisher eventbus.EventBus) *ImportService {
	return &ImportService{records: records, files: files, publisher: publisher}
}

// ImportBatch decodes the uploaded spreadsheets into the admin stage. Rows
// commit one by one; a failing row is logged and skipped without aborting
// the batch. Duplicate identifiers (within the batch or against the admin
// stage) are reported; only the first occurrence is inserted.
func (s *ImportService) ImportBatch(ctx context.Context, uploads []*UploadedFile) (*ImportSummary, error) {
	u, err := composables.UseUser(ctx)
	if err != nil || !u.IsAdmin {
		return nil, newServiceError(http.StatusForbidden, "ACCOUNTS_UNAUTHORIZED", "admin access required", err)
	}
	if len(uploads) == 0 {
		return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "no files uploaded", nil)
	}

	summary := &ImportSummary{}
	duplicates := make(map[string]bool)
	totalImported := 0

	for _, upload := range uploads {
		if !isSpreadsheet(upload.Data) {
			return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_UNSUPPORTED_FORMAT",
				"unsupported file format: "+upload.FileName, nil)
		}
		sheet, err := excel.Decode(upload.Data, upload.FileName)
		if err != nil {
			return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_UNSUPPORTED_FORMAT",
				"could not read file: "+upload.FileName, err)
		}

		source := strings.ToUpper(strings.TrimSpace(upload.Source))
		if source == "" {
			source = "A"
		}
		if !sourcefile.IsValidSource(source) {
			return nil, newServiceError(http.StatusBadRequest, "ACCOUNTS_INVALID", "invalid source tag: "+source, nil)
		}

		file := &sourcefile.SourceFile{FileName: upload.FileName, Source: source}
		if err := s.files.Create(ctx, file); err != nil {
			return nil, mapPgErrorToServiceError(err)
		}

		imported, err := s.importSheet(ctx, sheet, file, duplicates)
		if err != nil {
			return nil, err
		}
		if err := s.files.SetCount(ctx, file.ID, imported); err != nil {
			return nil, mapPgErrorToServiceError(err)
		}

		metrics.ImportedRows.WithLabelValues(source).Add(float64(imported))
		totalImported += imported
		summary.Files = append(summary.Files, FileImportResult{
			FileID:   upload.FileID,
			FileName: upload.FileName,
			Imported: imported,
		})
	}

	summary.DuplicateEmails = sortedKeys(duplicates)
	summary.Message = "import completed"
	metrics.DuplicateRows.Add(float64(len(summary.DuplicateEmails)))

	s.publisher.Publish(&RecordsImportedEvent{
		Files:      len(uploads),
		Imported:   totalImported,
		Duplicates: summary.DuplicateEmails,
	})
	return summary, nil
}

func (s *ImportService) importSheet(ctx context.Context, sheet *excel.Sheet, file *sourcefile.SourceFile, duplicates map[string]bool) (int, error) {
	accIdx, secretIdx, recoveryIdx, providerIdx, priceIdx := columnLayout(sheet)

	var candidates []string
	for _, row := range sheet.Rows {
		if accountID := row.Cell(accIdx); accountID != "" {
			candidates = append(candidates, accountID)
		}
	}
	existing, err := s.records.ExistingAccountIDs(ctx, record.StageAdmin, candidates)
	if err != nil {
		return 0, mapPgErrorToServiceError(err)
	}

	seen := make(map[string]bool)
	imported := 0
	for _, row := range sheet.Rows {
		accountID := row.Cell(accIdx)
		if accountID == "" {
			metrics.SkippedRows.Inc()
			continue
		}

		if seen[accountID] || existing[accountID] {
			duplicates[accountID] = true
		}
		seen[accountID] = true

		rec := &record.Record{
			Stage:            record.StageAdmin,
			AccountID:        accountID,
			Secret:           row.Cell(secretIdx),
			RecoveryContact:  row.Cell(recoveryIdx),
			Provider:         rowProvider(row, providerIdx, accountID),
			Status:           record.StatusWorking,
			Price:            rowPrice(row, priceIdx),
			SourceFileID:     &file.ID,
			SourceRowOrdinal: row.Ordinal,
		}

		// insertion is gated by the stage existence check alone; the
		// first batch occurrence of an identifier gets inserted
		exists, err := s.records.Exists(ctx, record.StageAdmin, accountID)
		if err != nil {
			return 0, mapPgErrorToServiceError(err)
		}
		if exists {
			continue
		}
		if err := s.records.Create(ctx, rec); err != nil {
			if logger, ok := composables.TryUseLogger(ctx); ok {
				logger.WithError(err).Warnf("skipping row %d of %s", row.Ordinal, file.FileName)
			}
			metrics.SkippedRows.Inc()
			continue
		}
		existing[accountID] = true
		imported++
	}
	return imported, nil
}

func columnLayout(sheet *excel.Sheet) (acc, secret, recovery, provider, price int) {
	if sheet.Headered {
		return sheet.Column("gmail", "email"),
			sheet.Column("pass"),
			sheet.Column("recover"),
			sheet.Column("provid"),
			sheet.Column("price")
	}
	return colAccountID, colSecret, colRecovery, colProvider, colPrice
}

func rowProvider(row excel.Row, idx int, accountID string) string {
	if provider := strings.ToLower(row.Cell(idx)); provider != "" {
		return provider
	}
	return record.InferProvider(accountID)
}

// rowPrice parses the price cell; unparsable prices are treated as absent,
// not as a row error.
func rowPrice(row excel.Row, idx int) *decimal.Decimal {
	cell := row.Cell(idx)
	if cell == "" {
		return nil
	}
	price, err := decimal.NewFromString(cell)
	if err != nil {
		return nil
	}
	return &price
}

func isSpreadsheet(data []byte) bool {
	detected := mimetype.Detect(data)
	for _, mt := range spreadsheetMimeTypes {
		if detected.Is(mt) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
