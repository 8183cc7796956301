package models

// EntityLead is the logical entity name leads are stored under.
const EntityLead = "lead"

// DefaultLeadSource is applied when a submission does not name its source.
const DefaultLeadSource = "landing"

// ChemicalApproach is the disinfection approach a prospect currently uses.
type ChemicalApproach string

const (
	ChemicalsChlorine ChemicalApproach = "chlorine"
	ChemicalsBromine  ChemicalApproach = "bromine"
	ChemicalsMixed    ChemicalApproach = "mixed"
	ChemicalsOther    ChemicalApproach = "other"
	ChemicalsNone     ChemicalApproach = "none"
)

// ChemicalApproaches lists the accepted values in declaration order.
var ChemicalApproaches = []ChemicalApproach{
	ChemicalsChlorine,
	ChemicalsBromine,
	ChemicalsMixed,
	ChemicalsOther,
	ChemicalsNone,
}

// Lead is a validated B2B lead captured from the landing page.
// Values are only produced by schema.ValidateLead; optional fields are nil when absent.
type Lead struct {
	CompanyName         string            `bson:"company_name" json:"company_name"`
	ContactName         string            `bson:"contact_name" json:"contact_name"`
	Email               string            `bson:"email" json:"email"`
	Phone               *string           `bson:"phone" json:"phone"`
	Country             *string           `bson:"country" json:"country"`
	City                *string           `bson:"city" json:"city"`
	SpaCount            *int              `bson:"spa_count" json:"spa_count"`
	CurrentChemicals    *ChemicalApproach `bson:"current_chemicals" json:"current_chemicals"`
	MonthlyChemicalCost *float64          `bson:"monthly_chemical_cost" json:"monthly_chemical_cost"`
	PainPoints          *string           `bson:"pain_points" json:"pain_points"`
	Message             *string           `bson:"message" json:"message"`
	Consent             bool              `bson:"consent" json:"consent"`
	Source              string            `bson:"source" json:"source"`
}
