package projects

import "setu-backend/internal/domain"

type template struct {
	name        string
	description string
	mandatory   bool
}

var commonStart = []template{
	{"Site survey and DPR approval", "Detailed project report approved by the block office", true},
	{"Work order issued", "Contractor or line department engaged", true},
}

var commonEnd = []template{
	{"Completion certificate", "Signed completion certificate uploaded", true},
	{"Handover to gram panchayat", "Asset handed over with photographs of the finished work", false},
}

var templates = map[domain.ProjectType][]template{
	domain.ProjectTypeInfrastructure: {
		{"Foundation", "Excavation and foundation work", true},
		{"Structure", "Walls, columns and roof", true},
		{"Finishing", "Plaster, flooring, electrical and paint", true},
	},
	domain.ProjectTypeEducation: {
		{"Classroom construction", "Classrooms built to plinth and roof", true},
		{"Toilets and drinking water", "Separate toilets and a water point", true},
		{"Furniture and learning material", "Desks, boards and teaching aids delivered", false},
	},
	domain.ProjectTypeHealthcare: {
		{"Building works", "Sub-centre or wellness centre structure", true},
		{"Equipment installed", "Essential equipment installed and tested", true},
		{"Staff posted", "ANM or health worker posted", true},
	},
	domain.ProjectTypeWaterSupply: {
		{"Source development", "Borewell or intake works", true},
		{"Pipeline laid", "Distribution pipeline laid", true},
		{"Household tap connections", "Functional tap connections commissioned", true},
		{"Water quality test", "Field test kit report uploaded", false},
	},
	domain.ProjectTypeRoad: {
		{"Earthwork", "Formation and earthwork", true},
		{"Sub-base and base", "Granular sub-base and water bound macadam", true},
		{"Surfacing", "Bituminous or cement concrete surface", true},
	},
	domain.ProjectTypeLivelihood: {
		{"Beneficiaries identified", "Beneficiary list approved in the gram sabha", true},
		{"Training delivered", "Skill training sessions held", true},
		{"Assets or credit linked", "Tools, livestock or bank linkage provided", true},
	},
	domain.ProjectTypeOther: {
		{"Work in progress", "Mid-point progress evidence", true},
	},
}

// DefaultCheckpoints returns the standard checklist for a project type, in sequence order.
func DefaultCheckpoints(t domain.ProjectType) []CheckpointInput {
	body, ok := templates[t]
	if !ok {
		body = templates[domain.ProjectTypeOther]
	}
	all := make([]template, 0, len(commonStart)+len(body)+len(commonEnd))
	all = append(all, commonStart...)
	all = append(all, body...)
	all = append(all, commonEnd...)

	out := make([]CheckpointInput, len(all))
	for i, tpl := range all {
		mandatory := tpl.mandatory
		out[i] = CheckpointInput{Name: tpl.name, Description: tpl.description, IsMandatory: &mandatory}
	}
	return out
}
