package servicesync

import (
	"testing"

	"bitbucket.org/mmdatafocus/service_sync/models"
	"bitbucket.org/mmdatafocus/service_sync/utils"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func amount(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func sourceService(network, productType, price string) SourceService {
	return SourceService{
		ID:           1,
		Network:      network,
		MobileNumber: "0911",
		ServiceProduct: &SourceServiceProduct{
			ID:    10,
			Type:  productType,
			Price: utils.ParseAmount(price),
		},
	}
}

func TestCompareRecords_NoDiscrepancies(t *testing.T) {
	src := sourceService("MTN", "DATA", "500")
	target := &models.Service{ID: 1, MobileNumber: "0911", Network: strPtr("MTN")}
	sub := &models.ServiceProduct{ID: 5, ServiceId: 1, ProductId: 3, Amount: amount("500")}
	product := &models.Product{ID: 3, Label: "DATA"}

	cmp := CompareRecords(src, target, sub, product)
	if cmp.Missing || len(cmp.Discrepancies) != 0 || cmp.HasIssues() {
		t.Fatalf("expected no discrepancies, got %+v", cmp)
	}
}

func TestCompareRecords_PriceDiscrepancy(t *testing.T) {
	src := sourceService("MTN", "DATA", "500")
	target := &models.Service{ID: 1, MobileNumber: "0911", Network: strPtr("MTN")}
	sub := &models.ServiceProduct{ID: 5, ServiceId: 1, ProductId: 3, Amount: amount("600")}
	product := &models.Product{ID: 3, Label: "DATA"}

	cmp := CompareRecords(src, target, sub, product)
	if len(cmp.Discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %+v", cmp.Discrepancies)
	}
	d := cmp.Discrepancies[0]
	if d.Field != FieldProductPrice || d.Source != "500" || d.Target != "600" {
		t.Fatalf("unexpected discrepancy %+v", d)
	}
}

func TestCompareRecords_NumericRepresentationsAreEqual(t *testing.T) {
	src := sourceService("MTN", "DATA", "10")
	target := &models.Service{ID: 1, Network: strPtr("MTN")}
	sub := &models.ServiceProduct{ID: 5, Amount: amount("10.0000")}
	product := &models.Product{Label: "DATA"}

	if cmp := CompareRecords(src, target, sub, product); len(cmp.Discrepancies) != 0 {
		t.Fatalf("expected 10 and 10.0000 to be equal, got %+v", cmp.Discrepancies)
	}
}

func TestCompareRecords_FieldOrder(t *testing.T) {
	src := sourceService("MTN", "DATA", "500")
	target := &models.Service{ID: 1, Network: strPtr("Ooredoo")}
	sub := &models.ServiceProduct{ID: 5, Amount: amount("700")}
	product := &models.Product{Label: "VOICE"}

	cmp := CompareRecords(src, target, sub, product)
	expected := []Discrepancy{
		{Field: FieldNetwork, Source: "MTN", Target: "Ooredoo"},
		{Field: FieldProductType, Source: "DATA", Target: "VOICE"},
		{Field: FieldProductPrice, Source: "500", Target: "700"},
	}
	if len(cmp.Discrepancies) != len(expected) {
		t.Fatalf("expected %d discrepancies, got %+v", len(expected), cmp.Discrepancies)
	}
	for i, d := range expected {
		if cmp.Discrepancies[i] != d {
			t.Fatalf("discrepancy %d expected %+v, got %+v", i, d, cmp.Discrepancies[i])
		}
	}
}

func TestCompareRecords_MissingTarget(t *testing.T) {
	cmp := CompareRecords(sourceService("MTN", "DATA", "500"), nil, nil, nil)
	if !cmp.Missing || len(cmp.Discrepancies) != 0 || !cmp.HasIssues() {
		t.Fatalf("expected missing with no field discrepancies, got %+v", cmp)
	}
}

func TestCompareRecords_MissingRelatedRows(t *testing.T) {
	src := sourceService("MTN", "DATA", "500")
	target := &models.Service{ID: 1, Network: nil}

	cmp := CompareRecords(src, target, nil, nil)
	expected := []Discrepancy{
		{Field: FieldNetwork, Source: "MTN", Target: ""},
		{Field: FieldProductType, Source: "DATA", Target: ""},
		{Field: FieldProductPrice, Source: "500", Target: ""},
	}
	if len(cmp.Discrepancies) != len(expected) {
		t.Fatalf("expected %d discrepancies, got %+v", len(expected), cmp.Discrepancies)
	}
	for i, d := range expected {
		if cmp.Discrepancies[i] != d {
			t.Fatalf("discrepancy %d expected %+v, got %+v", i, d, cmp.Discrepancies[i])
		}
	}
}

func TestCompareRecords_NullsOnBothSidesAreEqual(t *testing.T) {
	src := SourceService{ID: 1, MobileNumber: "0911"}
	target := &models.Service{ID: 1, MobileNumber: "0911"}

	if cmp := CompareRecords(src, target, nil, nil); len(cmp.Discrepancies) != 0 {
		t.Fatalf("expected no discrepancies, got %+v", cmp.Discrepancies)
	}
}
