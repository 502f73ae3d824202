package corpus

import (
	"sort"
	"strings"
)

// #region profile-fields

// Well-known company profile field names.
const (
	FieldIndustry       = "industry"
	FieldSubIndustry    = "sub_industry"
	FieldAnnualRevenue  = "annual_revenue"
	FieldEmployeeCount  = "employee_count"
	FieldITHeadcount    = "it_headcount"
	FieldITBudget       = "it_budget"
	FieldSecurityBudget = "security_budget"
)

// ProvenanceKind records how a profile value was obtained.
type ProvenanceKind string

const (
	ProvenanceUserProvided  ProvenanceKind = "user_provided"
	ProvenanceUserConfirmed ProvenanceKind = "user_confirmed"
	ProvenanceExtracted     ProvenanceKind = "extracted"
	ProvenanceDerived       ProvenanceKind = "derived"
)

// UserAsserted reports whether a person stated or confirmed the value.
func (p ProvenanceKind) UserAsserted() bool {
	return p == ProvenanceUserProvided || p == ProvenanceUserConfirmed
}

// #endregion profile-fields

// #region profile

// ProfileField is one parsed company profile value.
type ProfileField struct {
	Value        string          `json:"value"`
	Number       *float64        `json:"number,omitempty"`
	Confidence   ConfidenceLevel `json:"confidence"`
	Provenance   ProvenanceKind  `json:"provenance"`
	Sources      []string        `json:"sources,omitempty"`
	FiscalPeriod string          `json:"fiscal_period,omitempty"`
}

// Present reports whether the field carries a usable value.
func (f ProfileField) Present() bool {
	return f.Number != nil || strings.TrimSpace(f.Value) != ""
}

// Profile is the parsed company profile.
type Profile struct {
	CompanyName string                  `json:"company_name"`
	Fields      map[string]ProfileField `json:"fields"`
}

// Field returns the named field when it exists and is present.
func (p Profile) Field(name string) (ProfileField, bool) {
	f, ok := p.Fields[name]
	if !ok || !f.Present() {
		return ProfileField{}, false
	}
	return f, true
}

// #endregion profile

// #region fact

// Fact is one record extracted upstream from a discovery document.
type Fact struct {
	ID             string            `json:"id"`
	Domain         string            `json:"domain"`
	Category       string            `json:"category,omitempty"`
	Title          string            `json:"title,omitempty"`
	Text           string            `json:"text,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
	Confidence     float64           `json:"confidence"`
	SourceDocument string            `json:"source_document,omitempty"`
}

// SearchText returns the lowercased free text of the fact. Detail values are
// appended in sorted key order.
func (f Fact) SearchText() string {
	parts := []string{f.Title, f.Text, f.Category}
	keys := make([]string, 0, len(f.Details))
	for k := range f.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, f.Details[k])
	}
	return strings.ToLower(strings.Join(parts, " \n "))
}

// SortFacts returns a copy of facts ordered by ID.
func SortFacts(facts []Fact) []Fact {
	out := make([]Fact, len(facts))
	copy(out, facts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// #endregion fact

// #region inventory

// Inventory item kinds used by the engine.
const (
	KindApplication = "application"
	KindVendor      = "vendor"
	KindDevice      = "device"
)

// InventoryItem is one discovered asset.
type InventoryItem struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Entity      string `json:"entity,omitempty"`
	Name        string `json:"name"`
	Vendor      string `json:"vendor,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchText returns the lowercased name, vendor, category and description.
func (i InventoryItem) SearchText() string {
	return strings.ToLower(strings.Join([]string{i.Name, i.Vendor, i.Category, i.Description}, " \n "))
}

// Inventory is the discovered asset list.
type Inventory struct {
	Items []InventoryItem `json:"items"`
}

// Sorted returns the items ordered by ID.
func (inv Inventory) Sorted() []InventoryItem {
	out := make([]InventoryItem, len(inv.Items))
	copy(out, inv.Items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OfKind returns the items of the given kind ordered by ID.
func (inv Inventory) OfKind(kind string) []InventoryItem {
	var out []InventoryItem
	for _, item := range inv.Sorted() {
		if strings.EqualFold(item.Kind, kind) {
			out = append(out, item)
		}
	}
	return out
}

// ForEntity returns the items belonging to entity ordered by ID.
func (inv Inventory) ForEntity(entity string) []InventoryItem {
	var out []InventoryItem
	for _, item := range inv.Sorted() {
		if strings.EqualFold(item.Entity, entity) {
			out = append(out, item)
		}
	}
	return out
}

// #endregion inventory

// #region organization

// StaffMember is one person on the organization chart.
type StaffMember struct {
	Name           string `json:"name"`
	Title          string `json:"title,omitempty"`
	RoleCategory   string `json:"role_category,omitempty"`
	EmploymentKind string `json:"employment_kind,omitempty"`
}

// ExternalService is a relationship with an outside provider.
type ExternalService struct {
	VendorName    string   `json:"vendor_name"`
	Description   string   `json:"description,omitempty"`
	FTEEquivalent *float64 `json:"fte_equivalent,omitempty"`
	AnnualCost    *float64 `json:"annual_cost,omitempty"`
}

// OrgData is the organization snapshot.
type OrgData struct {
	Staff            []StaffMember     `json:"staff"`
	ExternalServices []ExternalService `json:"external_services"`
}

// OutsourcedFTE sums the FTE equivalents of all external services that declare one.
func (o OrgData) OutsourcedFTE() (float64, bool) {
	var total float64
	found := false
	for _, svc := range o.ExternalServices {
		if svc.FTEEquivalent != nil {
			total += *svc.FTEEquivalent
			found = true
		}
	}
	return total, found
}

// #endregion organization
