package constants

const (
	ViewData           = "view_data"
	OnboardBuilding    = "onboard_building"
	TransitionOperator = "transition_operator"
	ViewPortfolio      = "view_portfolio"
	ViewTimeline       = "view_timeline"
	CreateIssue        = "create_issue"
	UpdateIssue        = "update_issue"
	CreateWorkOrder    = "create_work_order"
	UpdateWorkOrder    = "update_work_order"
	ManageOrgs         = "manage_orgs"
	InviteUser         = "invite_user"
	RemoveUser         = "remove_user"
	AssignRole         = "assign_role"
)
