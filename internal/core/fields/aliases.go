package fields

// Target identifies one canonical record field fed from recognized labels.
type Target string

const (
	TargetPensionID       Target = "pensionID"
	TargetFirstName       Target = "firstName"
	TargetLastName        Target = "lastName"
	TargetPensionProvider Target = "pensionProvider"
	TargetCompanyName     Target = "companyName"
	TargetAddr1           Target = "addr1"
	TargetAddr2           Target = "addr2"
	TargetAddr3           Target = "addr3"
	TargetEircode         Target = "eircode"
	TargetPPSN            Target = "ppsn"
	TargetDateOfBirth     Target = "dateOfBirth"
	TargetPhone           Target = "phone"
	TargetEmail           Target = "email"
)

// AliasTable lists, per target, the label spellings the recognizer is known to
// produce, highest priority first.
type AliasTable map[Target][]string

func DefaultAliases() AliasTable {
	return AliasTable{
		TargetPensionID: {
			"Staff/Pension No.",
			"Staff / Pension No.",
			"Staff/ Pension No.",
			"Staff /Pension No.",
		},
		TargetFirstName:       {"First Name"},
		TargetLastName:        {"Last Name"},
		TargetPensionProvider: {LabelProvider},
		TargetCompanyName:     {LabelCompany},
		TargetAddr1:           {"Address 1"},
		TargetAddr2:           {"Address 2"},
		TargetAddr3:           {"Address 3"},
		TargetEircode:         {"Eircode"},
		TargetPPSN:            {"PPS Number"},
		TargetDateOfBirth:     {"Date of Birth"},
		TargetPhone:           {"Phone Number (s) Mobile"},
		TargetEmail:           {"Email Address*"},
	}
}
