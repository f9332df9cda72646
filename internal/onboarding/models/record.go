package models

import (
	"encoding/json"
	"maps"
	"slices"

	dErrors "onboarding/pkg/domain-errors"
)

// Group names a field-group of the aggregate form record.
type Group string

const (
	GroupAccount               Group = "account"
	GroupPersonal              Group = "personal"
	GroupCompanyRepresentative Group = "company_representative"
	GroupCompanyInformation    Group = "company_information"
	GroupUBOList               Group = "ubo_list"
	GroupClientType            Group = "client_type"
	GroupEmployment            Group = "employment"
	GroupIncome                Group = "income"
	GroupRegulatoryStatus      Group = "regulatory_status"
	GroupTransactionDetails    Group = "transaction_details"
	GroupDocuments             Group = "documents"
	GroupVerificationCode      Group = "verification_code"
	GroupIdentity              Group = "identity"
	GroupWallet                Group = "wallet"
)

// Field keys. Values are kept as strings; booleans are "true"/"false" and
// yes/no questions are "yes"/"no".
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldPasswordHash    = "passwordHash"
	FieldAccountType     = "accountType"
	FieldTermsAccepted   = "termsAccepted"

	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldNationality = "nationality"
	FieldAddress     = "address"
	FieldDateOfBirth = "dateOfBirth"
	FieldPhoneNumber = "phoneNumber"
	FieldPosition    = "position"

	FieldCompanyName          = "companyName"
	FieldPlaceOfIncorporation = "placeOfIncorporation"
	FieldDateOfEstablishment  = "dateOfEstablishment"
	FieldRegistrationNumber   = "registrationNumber"
	FieldWebsite              = "website"
	FieldRegisteredAddress    = "registeredAddress"

	FieldIndustry         = "industry"
	FieldOrganizationType = "organizationType"

	FieldIsFinanciallySupervised = "isFinanciallySupervised"
	FieldSupervisoryAuthority    = "supervisoryAuthority"
	FieldSupervisoryCountry      = "supervisoryCountry"
	FieldIsListedOnExchange      = "isListedOnExchange"
	FieldExchangeName            = "exchangeName"
	FieldExchangeCountry         = "exchangeCountry"

	FieldAnticipatedAnnualAmount = "anticipatedAnnualAmount"
	FieldPurposeOfRelationship   = "purposeOfRelationship"

	FieldOccupation = "occupation"
	FieldProfession = "profession"

	FieldSourceOfWealth     = "sourceOfWealth"
	FieldAnnualIncome       = "annualIncome"
	FieldNetWorth           = "netWorth"
	FieldAnnualTransactions = "annualTransactions"

	FieldHandoffReference = "handoffReference"
	FieldHandoffURL       = "handoffUrl"
	FieldHandoffMode      = "handoffMode"
	FieldStatus           = "status"
	FieldReason           = "reason"
	FieldWalletID         = "walletId"
)

// Answers for yes/no questions.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

// groupSchema lists the keys each field-group may hold. Groups absent from
// the map (UBO list, documents, code) are not plain field maps.
var groupSchema = map[Group][]string{
	GroupAccount:               {FieldEmail, FieldPasswordHash, FieldAccountType, FieldTermsAccepted},
	GroupPersonal:              {FieldFirstName, FieldLastName, FieldNationality, FieldAddress, FieldDateOfBirth, FieldPhoneNumber},
	GroupCompanyRepresentative: {FieldFirstName, FieldLastName, FieldPosition, FieldEmail, FieldPhoneNumber},
	GroupCompanyInformation: {
		FieldCompanyName, FieldPlaceOfIncorporation, FieldDateOfEstablishment,
		FieldRegistrationNumber, FieldWebsite, FieldRegisteredAddress,
	},
	GroupClientType: {FieldIndustry, FieldOrganizationType},
	GroupRegulatoryStatus: {
		FieldIsFinanciallySupervised, FieldSupervisoryAuthority, FieldSupervisoryCountry,
		FieldIsListedOnExchange, FieldExchangeName, FieldExchangeCountry,
	},
	GroupTransactionDetails: {FieldAnticipatedAnnualAmount, FieldPurposeOfRelationship},
	GroupEmployment:         {FieldOccupation, FieldProfession},
	GroupIncome:             {FieldSourceOfWealth, FieldAnnualIncome, FieldNetWorth, FieldAnnualTransactions},
	GroupIdentity:           {FieldHandoffReference, FieldHandoffURL, FieldHandoffMode, FieldStatus, FieldReason},
	GroupWallet:             {FieldWalletID, FieldStatus, FieldReason},
}

// IsFieldGroup reports whether g is a plain key/value group.
func (g Group) IsFieldGroup() bool {
	_, ok := groupSchema[g]
	return ok
}

// AllowedFields returns the keys g accepts.
func (g Group) AllowedFields() []string {
	return slices.Clone(groupSchema[g])
}

// ParseGroup validates a group name from external input.
func ParseGroup(s string) (Group, error) {
	g := Group(s)
	switch g {
	case GroupUBOList, GroupDocuments, GroupVerificationCode:
		return g, nil
	}
	if g.IsFieldGroup() {
		return g, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown field group: "+s)
}

// Fields is a partial or complete set of values for one group.
type Fields map[string]string

// FormRecord is the aggregate record populated across all onboarding steps.
//
// Invariants:
//   - Merge writes a single group and never deletes keys absent from the update
//   - the UBO list always holds at least one entry
//   - AccountType defaults to individual until the Account group sets it
type FormRecord struct {
	groups map[Group]Fields
	ubos   []UBO
}

// NewFormRecord returns an empty record with a single blank UBO entry.
func NewFormRecord() *FormRecord {
	return &FormRecord{
		groups: make(map[Group]Fields),
		ubos:   []UBO{{}},
	}
}

// Clone returns a deep copy of the record.
func (r *FormRecord) Clone() *FormRecord {
	groups := make(map[Group]Fields, len(r.groups))
	for g, fields := range r.groups {
		groups[g] = maps.Clone(fields)
	}
	return &FormRecord{groups: groups, ubos: slices.Clone(r.ubos)}
}

// Get returns a copy of the group's fields.
func (r *FormRecord) Get(g Group) Fields {
	return maps.Clone(r.groups[g])
}

// Value returns a single field value, or "" when unset.
func (r *FormRecord) Value(g Group, key string) string {
	return r.groups[g][key]
}

// Merge shallow-merges partial into group g. Keys not in partial are left
// untouched; other groups are never read or written. Merging the same partial
// twice leaves the record unchanged. It reports whether any value changed.
func (r *FormRecord) Merge(g Group, partial Fields) (bool, error) {
	allowed, ok := groupSchema[g]
	if !ok {
		return false, dErrors.New(dErrors.CodeInvalidInput, "group does not hold plain fields: "+string(g))
	}
	for key := range partial {
		if !slices.Contains(allowed, key) {
			return false, dErrors.New(dErrors.CodeInvalidInput, "unknown field "+key+" for group "+string(g))
		}
	}
	if len(partial) == 0 {
		return false, nil
	}
	current := r.groups[g]
	if current == nil {
		current = make(Fields, len(partial))
		r.groups[g] = current
	}
	changed := false
	for key, value := range partial {
		if prev, ok := current[key]; !ok || prev != value {
			current[key] = value
			changed = true
		}
	}
	return changed, nil
}

// Clear drops the given groups entirely. Only branch resets call this.
func (r *FormRecord) Clear(groups ...Group) {
	for _, g := range groups {
		delete(r.groups, g)
	}
}

// AccountType returns the branch discriminator, defaulting to individual.
func (r *FormRecord) AccountType() AccountType {
	if t, err := ParseAccountType(r.Value(GroupAccount, FieldAccountType)); err == nil {
		return t
	}
	return AccountIndividual
}

// Visited returns the groups that hold at least one value.
func (r *FormRecord) Visited() []Group {
	groups := make([]Group, 0, len(r.groups))
	for g, fields := range r.groups {
		if len(fields) > 0 {
			groups = append(groups, g)
		}
	}
	slices.Sort(groups)
	return groups
}

// UBO list

// UBOs returns a copy of the ultimate beneficial owner entries.
func (r *FormRecord) UBOs() []UBO {
	return slices.Clone(r.ubos)
}

// AddUBO appends a blank entry and returns its index.
func (r *FormRecord) AddUBO() int {
	r.ubos = append(r.ubos, UBO{})
	return len(r.ubos) - 1
}

// UpdateUBO merges partial into entry i with the same semantics as Merge.
func (r *FormRecord) UpdateUBO(i int, partial Fields) (bool, error) {
	if i < 0 || i >= len(r.ubos) {
		return false, dErrors.New(dErrors.CodeNotFound, "ubo entry not found")
	}
	return r.ubos[i].merge(partial)
}

// RemoveUBO deletes entry i. The last remaining entry cannot be removed.
func (r *FormRecord) RemoveUBO(i int) error {
	if i < 0 || i >= len(r.ubos) {
		return dErrors.New(dErrors.CodeNotFound, "ubo entry not found")
	}
	if len(r.ubos) == 1 {
		return dErrors.New(dErrors.CodeInvariantViolation, "at least one beneficial owner is required")
	}
	r.ubos = slices.Delete(r.ubos, i, i+1)
	return nil
}

// ResetUBOs restores the list to a single blank entry.
func (r *FormRecord) ResetUBOs() {
	r.ubos = []UBO{{}}
}

type formRecordJSON struct {
	Groups map[Group]Fields `json:"groups"`
	UBOs   []UBO            `json:"ubos"`
}

func (r *FormRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(formRecordJSON{Groups: r.groups, UBOs: r.ubos})
}

func (r *FormRecord) UnmarshalJSON(data []byte) error {
	var raw formRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Groups == nil {
		raw.Groups = make(map[Group]Fields)
	}
	if len(raw.UBOs) == 0 {
		raw.UBOs = []UBO{{}}
	}
	r.groups = raw.Groups
	r.ubos = raw.UBOs
	return nil
}

// UBO is one ultimate beneficial owner of a legal entity applicant.
type UBO struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Nationality string `json:"nationality"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
}

// IsComplete reports whether all five fields are filled.
func (u UBO) IsComplete() bool {
	return len(u.Missing()) == 0
}

// Missing lists the empty fields of the entry.
func (u UBO) Missing() []string {
	var missing []string
	for _, f := range u.fields() {
		if *f.value == "" {
			missing = append(missing, f.key)
		}
	}
	return missing
}

type uboField struct {
	key   string
	value *string
}

func (u *UBO) fields() []uboField {
	return []uboField{
		{FieldFirstName, &u.FirstName},
		{FieldLastName, &u.LastName},
		{FieldNationality, &u.Nationality},
		{FieldDateOfBirth, &u.DateOfBirth},
		{FieldAddress, &u.Address},
	}
}

func (u *UBO) merge(partial Fields) (bool, error) {
	fields := u.fields()
	for key := range partial {
		if !slices.ContainsFunc(fields, func(f uboField) bool { return f.key == key }) {
			return false, dErrors.New(dErrors.CodeInvalidInput, "unknown ubo field "+key)
		}
	}
	changed := false
	for _, f := range fields {
		if v, ok := partial[f.key]; ok && *f.value != v {
			*f.value = v
			changed = true
		}
	}
	return changed, nil
}
