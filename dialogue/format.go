package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tbxark/depositagent/slots"
	"github.com/tbxark/depositagent/types"
)

const confirmInstructions = `
What would you like to do?
1. Say 'confirm' to proceed with opening the %s account
2. Say 'change [field]' to modify any detail (e.g., 'change amount' or 'change tenure')
3. Say 'cancel' to cancel the process

Remember: Please verify all details carefully before confirming.`

// FormatTenure renders months as "Y year(s) and M month(s)", omitting a zero part.
// Values that are not whole numbers are returned unchanged.
func FormatTenure(raw string) string {
	months, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || months < 0 {
		return raw
	}
	years, rest := months/12, months%12
	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if rest > 0 || years == 0 {
		parts = append(parts, plural(rest, "month"))
	}
	return strings.Join(parts, " and ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func formatValue(field, value string) string {
	switch field {
	case types.FieldAmount:
		return "Rs. " + value
	case types.FieldTenureMonths:
		return FormatTenure(value)
	default:
		return value
	}
}

// FormatSummary lists every set field of the variant with its label, followed by
// the confirm/change/cancel instructions.
func FormatSummary(variant types.Variant, current types.SlotSet) string {
	schema := slots.For(variant)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here's a summary of your %s account details:\n\n", variant.DisplayName())
	for _, f := range schema.Fields {
		value, ok := current.Get(f.Name)
		if !ok || value == "" {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s\n", f.Label, formatValue(f.Name, value))
	}
	fmt.Fprintf(&sb, confirmInstructions, variant.DisplayName())
	return sb.String()
}

// FormatMissing asks for exactly the given fields, in the order given.
func FormatMissing(fields []types.FieldInfo) string {
	return formatFieldList("Please provide the following missing information:", fields)
}

func formatFieldList(header string, fields []types.FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, f := range fields {
		fmt.Fprintf(&sb, "- %s (%s)", f.DisplayName, f.Field)
		if f.Description != "" {
			fmt.Fprintf(&sb, ": %s", f.Description)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func FormatViolations(errs []types.ValidationError) string {
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, e.Message)
	}
	return strings.Join(lines, "\n")
}

func formatChanged(variant types.Variant, fields []string) string {
	schema := slots.For(variant)
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, schema.Label(f))
	}
	return fmt.Sprintf("Please provide the new %s:", strings.Join(labels, " and "))
}

// Welcome is the first prompt of a session.
func Welcome(variant types.Variant) string {
	schema := slots.For(variant)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello! I'm your deposit account opening assistant. I'll help you set up a %s account today.\n\n", variant.DisplayName())
	sb.WriteString("To open your account, I'll need:\n")
	for i, f := range schema.Fields {
		fmt.Fprintf(&sb, "%d. %s", i+1, f.Label)
		switch {
		case f.Description != "":
			fmt.Fprintf(&sb, " (%s)", f.Description)
		case len(f.Domain) > 1:
			fmt.Fprintf(&sb, " (%s)", strings.Join(f.Domain, " / "))
		}
		if !f.Required {
			sb.WriteString(", optional")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nYou can provide these details all at once or one by one. How would you like to proceed?")
	if variant != types.VariantFDTaxSaver {
		sb.WriteString("\n\nRemember: Higher tenures typically offer better interest rates.")
	}
	return sb.String()
}

func Cancelled(variant types.Variant) string {
	return fmt.Sprintf("%s account opening cancelled. Thank you for considering our services!", variant.DisplayName())
}

// Aborted is used when completion is requested before the details are complete.
func Aborted(variant types.Variant) string {
	return fmt.Sprintf("%s account opening aborted because some details are missing or invalid.", variant.DisplayName())
}

func Completed(variant types.Variant, reference string) string {
	return fmt.Sprintf("%s account opening completed successfully. Your reference number is %s.", variant.DisplayName(), reference)
}
