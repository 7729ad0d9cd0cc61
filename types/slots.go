package types

const (
	FieldAmount          = "amount"
	FieldTenureMonths    = "tenure_months"
	FieldFDType          = "fd_type"
	FieldInterestPayout  = "interest_payout"
	FieldRenewalOption   = "renewal_option"
	FieldNomineeName     = "nominee_name"
	FieldNomineeRelation = "nominee_relation"
)

// CanonicalFields lists every recognised slot in presentation order.
var CanonicalFields = []string{
	FieldAmount,
	FieldTenureMonths,
	FieldFDType,
	FieldInterestPayout,
	FieldRenewalOption,
	FieldNomineeName,
	FieldNomineeRelation,
}

// SlotSet holds the collected account details. A nil field is unset, which is
// distinct from an empty string.
type SlotSet struct {
	Amount          *string `json:"amount,omitempty" jsonschema:"description=Deposit amount in rupees as a plain number"`
	TenureMonths    *string `json:"tenure_months,omitempty" jsonschema:"description=Tenure converted to whole months"`
	FDType          *string `json:"fd_type,omitempty" jsonschema:"description=Fixed deposit type"`
	InterestPayout  *string `json:"interest_payout,omitempty" jsonschema:"description=Interest payout frequency"`
	RenewalOption   *string `json:"renewal_option,omitempty" jsonschema:"description=What happens at maturity"`
	NomineeName     *string `json:"nominee_name,omitempty" jsonschema:"description=Nominee full name"`
	NomineeRelation *string `json:"nominee_relation,omitempty" jsonschema:"description=Nominee relationship to the account holder"`
}

func (s *SlotSet) ref(field string) **string {
	switch field {
	case FieldAmount:
		return &s.Amount
	case FieldTenureMonths:
		return &s.TenureMonths
	case FieldFDType:
		return &s.FDType
	case FieldInterestPayout:
		return &s.InterestPayout
	case FieldRenewalOption:
		return &s.RenewalOption
	case FieldNomineeName:
		return &s.NomineeName
	case FieldNomineeRelation:
		return &s.NomineeRelation
	default:
		return nil
	}
}

// Get returns the value of field and whether it is set.
func (s SlotSet) Get(field string) (string, bool) {
	p := s.ref(field)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

func (s SlotSet) IsSet(field string) bool {
	_, ok := s.Get(field)
	return ok
}

// Set stores value under field. Unknown fields are ignored and reported as false.
func (s *SlotSet) Set(field, value string) bool {
	p := s.ref(field)
	if p == nil {
		return false
	}
	v := value
	*p = &v
	return true
}

func (s *SlotSet) Clear(field string) {
	if p := s.ref(field); p != nil {
		*p = nil
	}
}

// Values returns the set fields in canonical order as a plain map.
func (s SlotSet) Values() map[string]string {
	out := make(map[string]string)
	for _, f := range CanonicalFields {
		if v, ok := s.Get(f); ok {
			out[f] = v
		}
	}
	return out
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (s SlotSet) Clone() SlotSet {
	var out SlotSet
	for _, f := range CanonicalFields {
		if v, ok := s.Get(f); ok {
			out.Set(f, v)
		}
	}
	return out
}

func Pointer(field string) string {
	return "/" + field
}
