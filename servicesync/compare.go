package servicesync

import (
	"bitbucket.org/mmdatafocus/service_sync/models"
	"bitbucket.org/mmdatafocus/service_sync/utils"
)

const (
	FieldNetwork      = "Network"
	FieldProductType  = "Product Type"
	FieldProductPrice = "Product Price"
)

// Comparison is the outcome of comparing one upstream record with its local
// counterpart. Missing is set instead of Discrepancies when no local service
// matched.
type Comparison struct {
	Missing       bool
	Discrepancies []Discrepancy
}

// HasIssues reports whether the record counts towards the discrepancy total.
func (c Comparison) HasIssues() bool {
	return c.Missing || len(c.Discrepancies) > 0
}

// CompareRecords checks network, product type and product price. Any of
// target's related rows may be nil; nil compares as an empty value.
func CompareRecords(src SourceService, target *models.Service, sub *models.ServiceProduct, product *models.Product) Comparison {
	if target == nil {
		return Comparison{Missing: true}
	}

	var out []Discrepancy

	out = compareText(out, FieldNetwork, src.Network, derefString(target.Network))

	var (
		srcType  string
		srcPrice utils.Amount
	)
	if src.ServiceProduct != nil {
		srcType = src.ServiceProduct.Type
		srcPrice = src.ServiceProduct.Price
	}

	var label string
	if product != nil {
		label = product.Label
	}
	out = compareText(out, FieldProductType, srcType, label)

	var amount utils.Amount
	if sub != nil {
		amount = utils.AmountFromNullDecimal(sub.Amount)
	}
	if !srcPrice.Equal(amount) {
		out = append(out, Discrepancy{Field: FieldProductPrice, Source: srcPrice.String(), Target: amount.String()})
	}

	return Comparison{Discrepancies: out}
}

func compareText(out []Discrepancy, field, source, target string) []Discrepancy {
	if source != target {
		out = append(out, Discrepancy{Field: field, Source: source, Target: target})
	}
	return out
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
