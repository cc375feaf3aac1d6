// internal/store/sheet/sheet.go
package sheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mercadofacil/backend-go/internal/domain"
	"github.com/mercadofacil/backend-go/internal/store"
)

const (
	productsSheet = "produtos"
	historySheet  = "historico"
)

var (
	productHeader = []interface{}{"ID", "Produto", "Marca", "Preco", "Estoque_Atual", "Estoque_Minimo"}
	historyHeader = []interface{}{"Data", "Produto_ID", "Tipo", "Qtd", "Preco_Na_Epoca"}
)

// Store persists the snapshot in a two-worksheet .xlsx workbook, the same
// shape the household's original spreadsheet used. Save rewrites both
// worksheets from scratch; there is no incremental update.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("%w: open %s: %v", store.ErrConnection, s.path, err)
	}
	defer f.Close()

	prodRows, err := f.GetRows(productsSheet)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("%w: read %s: %v", store.ErrConnection, productsSheet, err)
	}
	histRows, err := f.GetRows(historySheet)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("%w: read %s: %v", store.ErrConnection, historySheet, err)
	}

	snap := store.Snapshot{}
	for i, row := range prodRows {
		if i == 0 || emptyRow(row) {
			continue
		}
		snap.Products = append(snap.Products, domain.Product{
			ID:           parseInt64(cell(row, 0), "ID"),
			Name:         cell(row, 1),
			Brand:        cell(row, 2),
			UnitPrice:    parseDecimal(cell(row, 3), "Preco"),
			CurrentStock: parseInt(cell(row, 4), "Estoque_Atual"),
			MinStock:     parseInt(cell(row, 5), "Estoque_Minimo"),
		})
	}

	for i, row := range histRows {
		if i == 0 || emptyRow(row) {
			continue
		}
		ts, err := time.ParseInLocation(domain.TimeLayout, cell(row, 0), time.Local)
		if err != nil {
			log.Warn().Str("value", cell(row, 0)).Msg("sheet: dropping history row with unparseable timestamp")
			continue
		}
		snap.History = append(snap.History, domain.HistoryEvent{
			Timestamp:   ts,
			ProductID:   parseInt64(cell(row, 1), "Produto_ID"),
			Kind:        parseKind(cell(row, 2)),
			Quantity:    parseInt(cell(row, 3), "Qtd"),
			PriceAtTime: parseDecimal(cell(row, 4), "Preco_Na_Epoca"),
		})
	}

	return snap, nil
}

func (s *Store) Save(ctx context.Context, snap store.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productsSheet); err != nil {
		return fmt.Errorf("sheet: rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(historySheet); err != nil {
		return fmt.Errorf("sheet: create %s: %w", historySheet, err)
	}

	if err := f.SetSheetRow(productsSheet, "A1", &productHeader); err != nil {
		return fmt.Errorf("sheet: write header: %w", err)
	}
	for i, p := range snap.Products {
		row := []interface{}{p.ID, p.Name, p.Brand, p.UnitPrice.String(), p.CurrentStock, p.MinStock}
		if err := s.writeRow(f, productsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(historySheet, "A1", &historyHeader); err != nil {
		return fmt.Errorf("sheet: write header: %w", err)
	}
	for i, ev := range snap.History {
		row := []interface{}{
			ev.Timestamp.Format(domain.TimeLayout),
			ev.ProductID,
			string(ev.Kind),
			ev.Quantity,
			ev.PriceAtTime.String(),
		}
		if err := s.writeRow(f, historySheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("%w: save %s: %v", store.ErrConnection, s.path, err)
	}
	return nil
}

func (s *Store) writeRow(f *excelize.File, sheet string, rowNum int, row []interface{}) error {
	cellName, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("sheet: row %d: %w", rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
		return fmt.Errorf("sheet: write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

// cell tolerates short rows; trailing empty cells are omitted by GetRows.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Numeric coercion guards against hand-edited cells: non-numeric values
// become 0 with a warning instead of failing the whole load.

func parseInt(s, col string) int {
	return int(parseInt64(s, col))
}

func parseInt64(s, col string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// sheets sometimes render integers as "3.0"
		if fv, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(fv)
		}
		log.Warn().Str("column", col).Str("value", s).Msg("sheet: non-numeric cell coerced to 0")
		return 0
	}
	return v
}

func parseDecimal(s, col string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		log.Warn().Str("column", col).Str("value", s).Msg("sheet: non-numeric cell coerced to 0")
		return decimal.Zero
	}
	return d
}

func parseKind(s string) domain.EventKind {
	switch strings.ToUpper(s) {
	case "PURCHASE", "COMPRA":
		return domain.EventPurchase
	case "AUDIT", "LEVANTAMENTO":
		return domain.EventAudit
	default:
		log.Warn().Str("value", s).Msg("sheet: unknown event kind, treating as audit")
		return domain.EventAudit
	}
}
