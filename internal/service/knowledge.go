package service

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var knowledgeYAML []byte

const purchaseDateLayout = "2006-01-02"

// KnowledgeBase responde las consultas estructuradas (políticas, guías, contactos).
// El documento se carga una sola vez y cada respuesta es una copia profunda.
type KnowledgeBase struct {
	doc     map[string]any
	nowFunc func() time.Time
}

func NewKnowledgeBase(now func() time.Time) (*KnowledgeBase, error) {
	return ParseKnowledgeBase(knowledgeYAML, now)
}

func ParseKnowledgeBase(raw []byte, now func() time.Time) (*KnowledgeBase, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	for _, section := range []string{"return_policy", "shipping", "contact", "size_guide", "warranty", "payment", "account", "loyalty", "care"} {
		if _, ok := doc[section].(map[string]any); !ok {
			return nil, fmt.Errorf("knowledge base: missing section %q", section)
		}
	}
	if now == nil {
		now = time.Now
	}
	return &KnowledgeBase{doc: doc, nowFunc: now}, nil
}

func (kb *KnowledgeBase) section(name string) map[string]any {
	m, _ := kb.doc[name].(map[string]any)
	return m
}

// GetReturnPolicy agrega las reglas de la categoría cuando se conoce.
func (kb *KnowledgeBase) GetReturnPolicy(category string) map[string]any {
	sec := kb.section("return_policy")
	out := pick(sec, "general_policy", "helpful_tips", "escalation_triggers")

	key := normalizeKey(category)
	if rules, ok := lookup(sec, "categories", key); ok {
		out["category_specific"] = rules
		out["customer_service_notes"] = []any{
			fmt.Sprintf("Category-specific rules apply to %s purchases", strings.ReplaceAll(key, "_", " ")),
			"Confirm the delivery date before quoting the return window",
			"Offer an exchange before processing a refund when the item is the wrong size",
		}
	}
	return out
}

// GetShippingInfo: orderValue nil si no se informó.
func (kb *KnowledgeBase) GetShippingInfo(country string, orderValue *float64) map[string]any {
	sec := kb.section("shipping")
	out := pick(sec, "domestic_options", "processing_time", "cutoff_times", "shipping_restrictions")

	if orderValue != nil {
		threshold := kb.FreeShippingThreshold()
		eligible := *orderValue >= threshold
		out["free_shipping_eligible"] = eligible
		if eligible {
			out["customer_guidance"] = fmt.Sprintf("This order of $%.2f qualifies for free shipping!", *orderValue)
		} else {
			out["customer_guidance"] = fmt.Sprintf("Add $%.2f more to qualify for free standard shipping.", threshold-*orderValue)
		}
	}

	if key := countryKey(country); key != "" {
		if rates, ok := lookup(sec, "international", key); ok {
			out["international_shipping"] = rates
		} else {
			out["international_shipping"] = "Contact support for rates to this destination"
		}
		out["international_notes"] = deepCopy(sec["international_notes"])
	}
	return out
}

// FreeShippingThreshold en dólares.
func (kb *KnowledgeBase) FreeShippingThreshold() float64 {
	v, _ := lookup(kb.section("shipping"), "domestic_options", "free_shipping", "threshold")
	return toFloat(v)
}

func (kb *KnowledgeBase) GetContactInformation(issueType, urgency string) map[string]any {
	sec := kb.section("contact")
	out := pick(sec, "general_contact", "self_service_options", "customer_service_tips")

	if dept, ok := lookup(sec, "departments", normalizeKey(issueType)); ok {
		out["specialized_contact"] = dept
		if m, ok := dept.(map[string]any); ok {
			out["routing_advice"] = fmt.Sprintf("Route this request to %v for the fastest resolution.", m["department"])
		}
	}
	if guide, ok := lookup(sec, "urgency", normalizeKey(urgency)); ok {
		out["urgency_guidance"] = guide
	}
	return out
}

// GeneralContact se usa también en el texto de get_support_info.
func (kb *KnowledgeBase) GeneralContact() map[string]any {
	m, _ := deepCopy(kb.section("contact")["general_contact"]).(map[string]any)
	return m
}

// GetSizeGuide: brand sólo agrega una advertencia, no hay tablas por marca.
func (kb *KnowledgeBase) GetSizeGuide(productType, brand string) map[string]any {
	sec := kb.section("size_guide")
	out := pick(sec, "measuring_instructions", "fitting_tips", "exchange_policy")

	key := pluralKey(sec["charts"], normalizeKey(productType))
	if chart, ok := lookup(sec, "charts", key); ok {
		out["size_chart"] = chart
	}
	if notes, ok := lookup(sec, "product_notes", key); ok {
		out["product_specific_notes"] = notes
	} else {
		out["product_specific_notes"] = []any{"No specific sizing notes for this product type. Use the measuring instructions and the product page."}
	}
	if b := strings.TrimSpace(brand); b != "" {
		out["brand_note"] = fmt.Sprintf("Sizing for %s may differ slightly; check the product page for brand-specific fit notes.", b)
	}
	return out
}

// GetWarrantyInformation calcula el estado de la garantía si viene purchaseDate (YYYY-MM-DD).
func (kb *KnowledgeBase) GetWarrantyInformation(category, purchaseDate string) map[string]any {
	sec := kb.section("warranty")
	out := pick(sec, "claim_process", "satisfaction_guarantee", "customer_service_notes")

	terms, known := lookup(sec, "categories", normalizeKey(category))
	var days int
	if known {
		m := terms.(map[string]any)
		days = int(toFloat(m["warranty_days"]))
		delete(m, "warranty_days")
		out["warranty_terms"] = m
	}

	if purchaseDate = strings.TrimSpace(purchaseDate); purchaseDate != "" {
		bought, err := time.Parse(purchaseDateLayout, purchaseDate)
		switch {
		case err != nil:
			out["date_error"] = "Invalid date format. Please use YYYY-MM-DD."
		case bought.After(startOfDay(kb.nowFunc())):
			out["date_error"] = "Purchase date is in the future. Please check the date on your receipt."
		case known:
			out["warranty_status"] = warrantyStatus(bought, days, kb.nowFunc())
		}
	}
	return out
}

func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func warrantyStatus(bought time.Time, warrantyDays int, now time.Time) map[string]any {
	today := startOfDay(now)
	elapsed := int(today.Sub(bought).Hours() / 24)
	remaining := warrantyDays - elapsed
	status := "active"
	if remaining < 0 {
		remaining = 0
		status = "expired"
	}
	return map[string]any{
		"days_since_purchase": elapsed,
		"days_remaining":      remaining,
		"status":              status,
		"expiration_date":     bought.AddDate(0, 0, warrantyDays).Format(purchaseDateLayout),
	}
}

func (kb *KnowledgeBase) GetPaymentInformation(inquiryType string) map[string]any {
	sec := kb.section("payment")
	out := pick(sec, "accepted_payments", "billing_information", "customer_service_guidance", "self_service_options")

	switch normalizeKey(inquiryType) {
	case "security", "fraud":
		out["security_details"] = deepCopy(sec["security_details"])
	case "issues", "problems", "troubleshooting", "declined":
		out["troubleshooting"] = deepCopy(sec["troubleshooting"])
	case "methods", "payment_methods":
		out["detailed_methods"] = deepCopy(sec["accepted_payments"])
	case "billing":
		out["billing_details"] = deepCopy(sec["billing_information"])
	}
	return out
}

func (kb *KnowledgeBase) GetAccountHelp(issueType string) map[string]any {
	sec := kb.section("account")
	out := pick(sec, "general_guidance", "immediate_actions", "escalation_criteria", "self_service_resources")
	merge(out, sec, "issues", normalizeKey(issueType))
	return out
}

func (kb *KnowledgeBase) GetLoyaltyProgramInfo(inquiryType string) map[string]any {
	sec := kb.section("loyalty")
	out := pick(sec, "program_overview", "program_rules", "customer_service_tips", "common_questions")
	merge(out, sec, "inquiries", normalizeKey(inquiryType))
	return out
}

// GetProductCareInfo: sin material conocido se devuelven todas las opciones de la categoría.
func (kb *KnowledgeBase) GetProductCareInfo(category, material string) map[string]any {
	sec := kb.section("care")
	out := pick(sec, "general_tips", "professional_services")

	cat, ok := lookup(sec, "categories", normalizeKey(category))
	if !ok {
		return out
	}
	options := cat.(map[string]any)
	if care, ok := options[normalizeKey(material)]; ok {
		out["specific_care"] = care
	} else {
		out["care_options"] = options
	}
	out["warranty_considerations"] = deepCopy(sec["warranty_considerations"])
	out["customer_service_guidance"] = deepCopy(sec["customer_service_guidance"])
	return out
}

// pick copia las claves pedidas de m.
func pick(m map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys)+4)
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = deepCopy(v)
		}
	}
	return out
}

// merge vuelca en out las claves de la entrada path (si existe).
func merge(out, m map[string]any, path ...string) {
	v, ok := lookup(m, path...)
	if !ok {
		return
	}
	if extra, ok := v.(map[string]any); ok {
		for k, val := range extra {
			out[k] = val
		}
	}
}

// lookup recorre mapas anidados y devuelve una copia del valor encontrado.
func lookup(m map[string]any, path ...string) (any, bool) {
	var cur any = m
	for _, p := range path {
		node, ok := cur.(map[string]any)
		if !ok || p == "" {
			return nil, false
		}
		if cur, ok = node[p]; !ok {
			return nil, false
		}
	}
	return deepCopy(cur), true
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// pluralKey acepta "shirt" para "shirts".
func pluralKey(charts any, key string) string {
	m, _ := charts.(map[string]any)
	if _, ok := m[key]; ok || key == "" {
		return key
	}
	if _, ok := m[key+"s"]; ok {
		return key + "s"
	}
	return key
}

var countryAliases = map[string]string{
	"ca":             "canada",
	"gb":             "uk",
	"great_britain":  "uk",
	"united_kingdom": "uk",
	"england":        "uk",
	"au":             "australia",
	"mx":             "mexico",
	"de":             "germany",
}

var domesticCountries = map[string]bool{
	"us": true, "usa": true, "united_states": true, "united_states_of_america": true,
}

// countryKey devuelve "" para envíos nacionales o sin destino.
func countryKey(country string) string {
	key := normalizeKey(country)
	if key == "" || domesticCountries[key] {
		return ""
	}
	if alias, ok := countryAliases[key]; ok {
		return alias
	}
	return key
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
