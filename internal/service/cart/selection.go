package cart

import (
	"fmt"

	"totem-kiosk/internal/domain"
)

// Selection tracks the modifier options chosen for one product configuration.
type Selection struct {
	product  domain.Product
	selected []domain.SelectedModifier
}

// NewSelection starts an empty selection for product.
func NewSelection(product domain.Product) *Selection {
	return &Selection{product: product}
}

func (s *Selection) Product() domain.Product {
	return s.product
}

// Toggle applies one tap on an option:
//  1. a selected option is deselected;
//  2. a full group either swaps its choice (maxSelection 1) or ignores the tap;
//  3. otherwise the option is added.
func (s *Selection) Toggle(groupID, optionID string) error {
	group, ok := s.product.Group(groupID)
	if !ok {
		return domain.NewValidationError("groupId", "unknown modifier group")
	}
	option, ok := group.Option(optionID)
	if !ok {
		return domain.NewValidationError("optionId", "unknown modifier option")
	}

	if idx := s.index(groupID, optionID); idx >= 0 {
		s.selected = append(s.selected[:idx], s.selected[idx+1:]...)
		return nil
	}

	// A zero maximum leaves the group uncapped.
	if group.MaxSelection > 0 && s.Count(groupID) >= group.MaxSelection {
		if !group.SingleChoice() {
			return nil
		}
		s.clearGroup(groupID)
	}

	s.selected = append(s.selected, domain.SelectedModifier{
		GroupID:         groupID,
		OptionID:        option.ID,
		Name:            option.Name,
		Price:           option.Price,
		IntegrationCode: option.IntegrationCode,
	})
	return nil
}

// Count returns how many options of the group are selected.
func (s *Selection) Count(groupID string) int {
	n := 0
	for _, m := range s.selected {
		if m.GroupID == groupID {
			n++
		}
	}
	return n
}

func (s *Selection) IsSelected(groupID, optionID string) bool {
	return s.index(groupID, optionID) >= 0
}

// Validate enforces every group's minimum.
func (s *Selection) Validate() error {
	for _, g := range s.product.ModifierGroups {
		if g.MinSelection > 0 && s.Count(g.ID) < g.MinSelection {
			return domain.NewValidationError("modifiers", fmt.Sprintf("choose at least %d in %q", g.MinSelection, g.Title))
		}
	}
	return nil
}

// Selected returns the chosen modifiers in tap order.
func (s *Selection) Selected() []domain.SelectedModifier {
	return append([]domain.SelectedModifier(nil), s.selected...)
}

func (s *Selection) index(groupID, optionID string) int {
	for i, m := range s.selected {
		if m.GroupID == groupID && m.OptionID == optionID {
			return i
		}
	}
	return -1
}

func (s *Selection) clearGroup(groupID string) {
	kept := s.selected[:0]
	for _, m := range s.selected {
		if m.GroupID != groupID {
			kept = append(kept, m)
		}
	}
	s.selected = kept
}
