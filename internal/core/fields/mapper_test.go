package fields

import (
	"testing"
	"time"

	"github.com/kirillkom/pension-intake/internal/core/domain"
)

func fixedNow() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)
}

func newTestMapper() *Mapper {
	return NewMapper(DefaultAliases(), domain.DefaultWorkflow(), fixedNow)
}

func TestMapPensionIDAliasesResolveToSameField(t *testing.T) {
	m := newTestMapper()
	for _, label := range DefaultAliases()[TargetPensionID] {
		rec := m.Map(domain.ExtractedDocument{Data: domain.ParsedFields{label: "12345"}})
		if domain.StringValue(rec.PensionID) != "12345" {
			t.Fatalf("alias %q did not resolve, got %v", label, rec.PensionID)
		}
	}
}

func TestMapAliasPrecedence(t *testing.T) {
	m := newTestMapper()
	aliases := DefaultAliases()[TargetPensionID]
	parsed := domain.ParsedFields{}
	for i := len(aliases) - 1; i >= 0; i-- {
		parsed[aliases[i]] = aliases[i]
		rec := m.Map(domain.ExtractedDocument{Data: parsed})
		if got := domain.StringValue(rec.PensionID); got != aliases[i] {
			t.Fatalf("expected highest-priority alias %q to win, got %q", aliases[i], got)
		}
	}
}

func TestMapSkipsEmptyAliasValue(t *testing.T) {
	m := newTestMapper()
	rec := m.Map(domain.ExtractedDocument{Data: domain.ParsedFields{
		"Staff/Pension No.":   "",
		"Staff / Pension No.": "777",
	}})
	if domain.StringValue(rec.PensionID) != "777" {
		t.Fatalf("expected fallback alias, got %v", rec.PensionID)
	}
}

func TestMapBuildsCanonicalRecord(t *testing.T) {
	m := newTestMapper()
	doc := domain.ExtractedDocument{
		Source: domain.InputImage{Name: "scan1.jpg", Path: "/in/scan1.jpg"},
		File:   "scan1.jpg",
		Data: Parse("Provider: AON\nCompany: CIE\nFirst Name: Jane\nLast Name: Doe\n" +
			"Staff/Pension No.: 12345\nDate of Birth: 01-02-1970\nPhone Number (s) Mobile: 0851234567 Home\n" +
			"Eircode: D02 X285\nEmail Address*: jane @example.com\n"),
	}

	rec := m.Map(doc)
	checks := map[string]struct {
		got  *string
		want string
	}{
		"pensionID": {rec.PensionID, "12345"},
		"firstName": {rec.FirstName, "Jane"},
		"lastName":  {rec.LastName, "Doe"},
		"provider":  {rec.PensionProvider, "AON"},
		"company":   {rec.CompanyName, "CIE"},
		"dob":       {rec.DateOfBirth, "1970-02-01"},
		"phone":     {rec.Phone, "0851234567"},
		"eircode":   {rec.Eircode, "D02 X285"},
		"email":     {rec.Email, "jane @example.com"},
	}
	for name, c := range checks {
		if domain.StringValue(c.got) != c.want {
			t.Fatalf("%s = %q, want %q", name, domain.StringValue(c.got), c.want)
		}
	}
	if rec.City != nil || rec.County != nil || rec.Addr1 != nil || rec.PPSN != nil {
		t.Fatalf("expected absent fields to be nil: %+v", rec)
	}
	if rec.ArchivalArtifactName != "" {
		t.Fatalf("artifact name must not be assigned at mapping time, got %q", rec.ArchivalArtifactName)
	}
	if rec.UploadType != "PGU" || rec.DocumentType != "RWS_CIE2024" {
		t.Fatalf("unexpected workflow constants: %q %q", rec.UploadType, rec.DocumentType)
	}
	if rec.UploadTimestamp != "2024-05-06T07:08:09.123Z" {
		t.Fatalf("unexpected upload timestamp %q", rec.UploadTimestamp)
	}
	if rec.Source.Name != "scan1.jpg" {
		t.Fatalf("expected source carried over, got %+v", rec.Source)
	}
}

func TestMapDegradesMalformedDateAndPhoneToNil(t *testing.T) {
	m := newTestMapper()
	rec := m.Map(domain.ExtractedDocument{Data: domain.ParsedFields{
		"Date of Birth":           "sometime in May",
		"Phone Number (s) Mobile": "12345",
	}})
	if rec.DateOfBirth != nil || rec.Phone != nil {
		t.Fatalf("expected nil dob/phone, got %v %v", rec.DateOfBirth, rec.Phone)
	}
}
