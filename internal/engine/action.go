package engine

// ActionKind tags an Action.
type ActionKind string

const (
	ActAdvanceTurn          ActionKind = "advance_turn"
	ActResolveEvent         ActionKind = "resolve_event"
	ActAcquireCell          ActionKind = "acquire_cell"
	ActSetProduction        ActionKind = "set_production"
	ActImproveProduction    ActionKind = "improve_production"
	ActSustainablePractice  ActionKind = "apply_sustainable_practice"
	ActCampaign             ActionKind = "campaign"
	ActPlantCrop            ActionKind = "plant_crop"
	ActHarvestCrop          ActionKind = "harvest_crop"
	ActSetExportDestination ActionKind = "set_export_destination"
	ActCreateContract       ActionKind = "create_export_contract"
	ActFulfillContract      ActionKind = "fulfill_export_contract"
	ActReset                ActionKind = "reset"
)

// ActionKinds lists every kind the core understands.
var ActionKinds = []ActionKind{
	ActAdvanceTurn, ActResolveEvent, ActAcquireCell, ActSetProduction,
	ActImproveProduction, ActSustainablePractice, ActCampaign, ActPlantCrop,
	ActHarvestCrop, ActSetExportDestination, ActCreateContract,
	ActFulfillContract, ActReset,
}

// Action is a tagged union; only the fields of Kind are read.
type Action struct {
	Kind          ActionKind `json:"kind"`
	EventID       string     `json:"event_id,omitempty"`
	OptionID      string     `json:"option_id,omitempty"`
	CellID        string     `json:"cell_id,omitempty"`
	Production    string     `json:"production,omitempty"`
	Campaign      string     `json:"campaign,omitempty"`
	CropID        string     `json:"crop_id,omitempty"`
	Region        string     `json:"region,omitempty"`
	ContractID    string     `json:"contract_id,omitempty"`
	Quantity      int        `json:"quantity,omitempty"`
	Amount        int        `json:"amount,omitempty"`
	PricePerUnit  float64    `json:"price_per_unit,omitempty"`
	DurationWeeks int        `json:"duration_weeks,omitempty"`
}

func AdvanceTurn() Action { return Action{Kind: ActAdvanceTurn} }

func ResolveEvent(eventID, optionID string) Action {
	return Action{Kind: ActResolveEvent, EventID: eventID, OptionID: optionID}
}

func AcquireCell(cellID string) Action { return Action{Kind: ActAcquireCell, CellID: cellID} }

func SetProduction(cellID, production string) Action {
	return Action{Kind: ActSetProduction, CellID: cellID, Production: production}
}

func ImproveProduction(cellID string) Action {
	return Action{Kind: ActImproveProduction, CellID: cellID}
}

func SustainablePractice(cellID string) Action {
	return Action{Kind: ActSustainablePractice, CellID: cellID}
}

func Campaign(id string) Action { return Action{Kind: ActCampaign, Campaign: id} }

func PlantCrop(cellID, cropID string) Action {
	return Action{Kind: ActPlantCrop, CellID: cellID, CropID: cropID}
}

func HarvestCrop(cellID string) Action { return Action{Kind: ActHarvestCrop, CellID: cellID} }

func SetExportDestination(region string) Action {
	return Action{Kind: ActSetExportDestination, Region: region}
}

func CreateContract(cropID string, quantity int, region string, pricePerUnit float64, weeks int) Action {
	return Action{
		Kind:          ActCreateContract,
		CropID:        cropID,
		Quantity:      quantity,
		Region:        region,
		PricePerUnit:  pricePerUnit,
		DurationWeeks: weeks,
	}
}

func FulfillContract(contractID string, amount int) Action {
	return Action{Kind: ActFulfillContract, ContractID: contractID, Amount: amount}
}

func Reset() Action { return Action{Kind: ActReset} }
