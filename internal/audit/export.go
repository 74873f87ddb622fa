package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"
)

// exportCap membatasi jumlah baris satu file ekspor.
const exportCap = 50000

var csvHeader = []string{"id", "created_at", "actor_id", "action", "description"}

// ExportCSV menulis seluruh entri yang cocok dengan filter sebagai CSV,
// berhalaman per maxLimit baris.
func (s *Service) ExportCSV(ctx context.Context, f Filters) ([]byte, error) {
	f, err := normalizeFilters(f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	f.Limit, f.Offset = maxLimit, 0
	for f.Offset < exportCap {
		entries, err := s.repo.Query(ctx, f)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			record := []string{
				strconv.FormatInt(e.ID, 10),
				e.CreatedAt.UTC().Format(time.RFC3339),
				strconv.FormatInt(e.ActorID, 10),
				e.Action,
				e.Description,
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
		if len(entries) < f.Limit {
			break
		}
		f.Offset += f.Limit
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
