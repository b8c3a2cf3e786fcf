// Package importer reads menu CSV exports into a domain.Menu. The fake
// gateway serves the result so a kiosk can run against a real catalogue
// without a POS.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"totem-kiosk/internal/domain"
)

// Header names understood by the importer. Unknown columns are ignored.
const (
	colCategoryID       = "category.id"
	colCategoryName     = "category.name"
	colCategoryPosition = "category.position"
	colProductID        = "product.id"
	colProductName      = "product.name"
	colProductDesc      = "product.description"
	colProductPrice     = "product.price"
	colProductImage     = "product.image"
	colProductCode      = "product.integrationCode"
	colGroupID          = "group.id"
	colGroupTitle       = "group.title"
	colGroupMin         = "group.min"
	colGroupMax         = "group.max"
	colOptionID         = "option.id"
	colOptionName       = "option.name"
	colOptionPrice      = "option.price"
	colOptionCode       = "option.integrationCode"
)

// CSVImporter parses one menu export. A row with a product id starts a
// product; following rows without one carry its modifier groups and options.
type CSVImporter struct {
	reader *csv.Reader
}

func NewCSVImporter(r io.Reader) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr}
}

// Run parses every row and returns the assembled menu.
func (i *CSVImporter) Run(ctx context.Context) (domain.Menu, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return domain.Menu{}, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index[colProductID]; !ok {
		return domain.Menu{}, fmt.Errorf("missing %s column", colProductID)
	}

	var (
		menu       domain.Menu
		categories = map[string]bool{}
		current    *domain.Product
		line       = 1
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validateProduct(*current); err != nil {
			return err
		}
		menu.Products = append(menu.Products, *current)
		current = nil
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return domain.Menu{}, err
		}
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Menu{}, fmt.Errorf("read row: %w", err)
		}
		line++

		if id := pick(record, index, colProductID); id != "" {
			if err := flush(); err != nil {
				return domain.Menu{}, err
			}
			p, err := parseProduct(record, index)
			if err != nil {
				return domain.Menu{}, fmt.Errorf("line %d: %w", line, err)
			}
			current = &p
			if cat, ok := parseCategory(record, index, len(menu.Categories)); ok && !categories[cat.ID] {
				categories[cat.ID] = true
				menu.Categories = append(menu.Categories, cat)
			}
		}

		if current == nil {
			continue
		}
		if err := addModifier(current, record, index); err != nil {
			return domain.Menu{}, fmt.Errorf("line %d: %w", line, err)
		}
	}

	if err := flush(); err != nil {
		return domain.Menu{}, err
	}
	return menu, nil
}

func parseProduct(record []string, index map[string]int) (domain.Product, error) {
	price, err := parseMoney(pick(record, index, colProductPrice))
	if err != nil {
		return domain.Product{}, fmt.Errorf("product price: %w", err)
	}
	return domain.Product{
		ID:              pick(record, index, colProductID),
		Name:            pick(record, index, colProductName),
		Description:     pick(record, index, colProductDesc),
		Price:           price,
		ImageURL:        pick(record, index, colProductImage),
		CategoryID:      pick(record, index, colCategoryID),
		IntegrationCode: pick(record, index, colProductCode),
	}, nil
}

func parseCategory(record []string, index map[string]int, seen int) (domain.Category, bool) {
	id := pick(record, index, colCategoryID)
	if id == "" {
		return domain.Category{}, false
	}
	name := pick(record, index, colCategoryName)
	if name == "" {
		name = id
	}
	position := seen + 1
	if raw := pick(record, index, colCategoryPosition); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			position = n
		}
	}
	return domain.Category{ID: id, Name: name, Position: position}, true
}

// addModifier attaches the row's group and option, if any, to p. Groups are
// declared once; later rows may reference them by id alone.
func addModifier(p *domain.Product, record []string, index map[string]int) error {
	groupID := pick(record, index, colGroupID)
	if groupID == "" {
		return nil
	}

	gi := -1
	for i := range p.ModifierGroups {
		if p.ModifierGroups[i].ID == groupID {
			gi = i
			break
		}
	}
	if gi < 0 {
		minSel, err := parseInt(pick(record, index, colGroupMin))
		if err != nil {
			return fmt.Errorf("group %q min: %w", groupID, err)
		}
		maxSel, err := parseInt(pick(record, index, colGroupMax))
		if err != nil {
			return fmt.Errorf("group %q max: %w", groupID, err)
		}
		if maxSel > 0 && minSel > maxSel {
			return fmt.Errorf("group %q: min %d exceeds max %d", groupID, minSel, maxSel)
		}
		title := pick(record, index, colGroupTitle)
		if title == "" {
			title = groupID
		}
		p.ModifierGroups = append(p.ModifierGroups, domain.ModifierGroup{
			ID:           groupID,
			Title:        title,
			MinSelection: minSel,
			MaxSelection: maxSel,
		})
		gi = len(p.ModifierGroups) - 1
	}

	optionID := pick(record, index, colOptionID)
	if optionID == "" {
		return nil
	}
	price, err := parseMoney(pick(record, index, colOptionPrice))
	if err != nil {
		return fmt.Errorf("option %q price: %w", optionID, err)
	}
	if price.IsNegative() {
		return fmt.Errorf("option %q: negative price", optionID)
	}
	name := pick(record, index, colOptionName)
	if name == "" {
		name = optionID
	}
	p.ModifierGroups[gi].Options = append(p.ModifierGroups[gi].Options, domain.ModifierOption{
		ID:              optionID,
		Name:            name,
		Price:           price,
		IntegrationCode: pick(record, index, colOptionCode),
	})
	return nil
}

func validateProduct(p domain.Product) error {
	if p.Name == "" {
		return fmt.Errorf("invalid product row (missing name) for id %q", p.ID)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("invalid product row (negative price) for id %q", p.ID)
	}
	return nil
}

func parseMoney(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
}

func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
