package crm

type ContactRole string

const (
	ContactBuyer  ContactRole = "Buyer"
	ContactSeller ContactRole = "Seller"
	ContactAgent  ContactRole = "Agent"
	ContactOther  ContactRole = "Other"
)

var contactRoles = []ContactRole{ContactBuyer, ContactSeller, ContactAgent, ContactOther}

type PropertyStatus string

const (
	PropertyActive  PropertyStatus = "Active"
	PropertyPending PropertyStatus = "Pending"
	PropertySold    PropertyStatus = "Sold"
)

var propertyStatuses = []PropertyStatus{PropertyActive, PropertyPending, PropertySold}

type PropertyType string

const (
	PropertySingleFamily PropertyType = "Single Family"
	PropertyCondo        PropertyType = "Condo"
	PropertyTownhouse    PropertyType = "Townhouse"
	PropertyMultiFamily  PropertyType = "Multi-Family"
	PropertyLand         PropertyType = "Land"
)

var propertyTypes = []PropertyType{PropertySingleFamily, PropertyCondo, PropertyTownhouse, PropertyMultiFamily, PropertyLand}

// Stage is a Transaction funnel position.
type Stage string

const (
	StageProspect      Stage = "Prospect"
	StageActive        Stage = "Active"
	StageUnderContract Stage = "Under Contract"
	StageClosedWon     Stage = "Closed Won"
	StageClosedLost    Stage = "Closed Lost"
)

// FunnelStages is the Transaction funnel in pipeline order.
var FunnelStages = []Stage{StageProspect, StageActive, StageUnderContract, StageClosedWon, StageClosedLost}

// CommissionStages earn commission that has not been paid out yet.
var CommissionStages = []Stage{StageActive, StageUnderContract}

type DealStage string

const (
	DealNew           DealStage = "NEW"
	DealNegotiation   DealStage = "NEGOTIATION"
	DealUnderContract DealStage = "UNDER_CONTRACT"
	DealClosedWon     DealStage = "CLOSED_WON"
	DealClosedLost    DealStage = "CLOSED_LOST"
)

var DealStages = []DealStage{DealNew, DealNegotiation, DealUnderContract, DealClosedWon, DealClosedLost}

// OpenDealStages count toward the active pipeline.
var OpenDealStages = []DealStage{DealNew, DealNegotiation, DealUnderContract}

type EventType string

const (
	EventCall    EventType = "Call"
	EventMeeting EventType = "Meeting"
	EventEmail   EventType = "Email"
	EventOther   EventType = "Other"
)

var eventTypes = []EventType{EventCall, EventMeeting, EventEmail, EventOther}

func oneOf[T ~string](v T, allowed []T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func ValidStage(s Stage) bool { return oneOf(s, FunnelStages) }
func ValidDealStage(s DealStage) bool { return oneOf(s, DealStages) }
