package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        string          `json:"image,omitempty"`
	CategoryID      string          `json:"categoryId,omitempty"`
	IntegrationCode string          `json:"integrationCode,omitempty"`
	ModifierGroups  []ModifierGroup `json:"modifierGroups,omitempty"`
}

// Code returns the code the POS knows the product by.
func (p Product) Code() string {
	if p.IntegrationCode != "" {
		return p.IntegrationCode
	}
	return p.ID
}

// Group finds a modifier group by id.
func (p Product) Group(id string) (ModifierGroup, bool) {
	for _, g := range p.ModifierGroups {
		if g.ID == id {
			return g, true
		}
	}
	return ModifierGroup{}, false
}

// ModifierGroup bounds how many of its options may be chosen.
type ModifierGroup struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	MinSelection int              `json:"minSelection"`
	MaxSelection int              `json:"maxSelection"`
	Options      []ModifierOption `json:"options"`
}

// SingleChoice reports radio-button semantics.
func (g ModifierGroup) SingleChoice() bool {
	return g.MaxSelection == 1
}

func (g ModifierGroup) Option(id string) (ModifierOption, bool) {
	for _, o := range g.Options {
		if o.ID == id {
			return o, true
		}
	}
	return ModifierOption{}, false
}

type ModifierOption struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	IntegrationCode string          `json:"integrationCode,omitempty"`
}

// SelectedModifier is an option chosen for a cart line, with its price snapshot.
type SelectedModifier struct {
	GroupID         string          `json:"groupId"`
	OptionID        string          `json:"optionId"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	IntegrationCode string          `json:"integrationCode,omitempty"`
}
