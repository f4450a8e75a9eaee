package shared

// Role identifies the function of an employee. Wire values are the
// Portuguese labels the company uses on every screen and export.
type Role string

const (
	RoleAdmin       Role = "Administrador"
	RoleCoordinator Role = "Coordenador"
	RoleSupervisor  Role = "Supervisor"
	RoleDriver      Role = "Motorista"
	RoleVan         Role = "Van"
)

// IsValid checks if the role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleSupervisor, RoleDriver, RoleVan:
		return true
	default:
		return false
	}
}

// Capability names a guarded operation group.
type Capability string

const (
	CapManageMoves          Capability = "moves.manage"
	CapSetMoveStatus        Capability = "moves.status"
	CapEditVolume           Capability = "moves.volume.edit"
	CapValidateVolume       Capability = "moves.volume.validate"
	CapManageResidents      Capability = "residents.manage"
	CapManageStaff          Capability = "staff.manage"
	CapFinance              Capability = "finance.manage"
	CapSubmitDailyRecord    Capability = "finance.daily_record"
	CapViewHelperPayouts    Capability = "finance.helper_payouts"
	CapManageHelpers        Capability = "helpers.manage"
	CapViewHistory          Capability = "history.view"
	CapViewReports          Capability = "reports.view"
	CapOverrideConfirmation Capability = "moves.confirmation.override"
)

// rolePolicy is the single authorization table. Every handler and service
// consults it through Role.Can; no permission decision lives anywhere else.
var rolePolicy = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageMoves:          true,
		CapSetMoveStatus:        true,
		CapEditVolume:           true,
		CapValidateVolume:       true,
		CapManageResidents:      true,
		CapManageStaff:          true,
		CapFinance:              true,
		CapSubmitDailyRecord:    true,
		CapViewHelperPayouts:    true,
		CapManageHelpers:        true,
		CapViewHistory:          true,
		CapViewReports:          true,
		CapOverrideConfirmation: true,
	},
	RoleCoordinator: {
		CapManageMoves:     true,
		CapValidateVolume:  true,
		CapManageResidents: true,
		CapViewReports:     true,
	},
	RoleSupervisor: {
		CapManageMoves:       true,
		CapSetMoveStatus:     true,
		CapEditVolume:        true,
		CapManageResidents:   true,
		CapViewHelperPayouts: true,
		CapManageHelpers:     true,
		CapViewReports:       true,
	},
	RoleDriver: {},
	RoleVan:    {},
}

// Can reports whether the role holds the capability.
func (r Role) Can(c Capability) bool {
	return rolePolicy[r][c]
}

// Actor is the authenticated employee performing a request.
type Actor struct {
	ID   int64
	Name string
	Role Role
}

// Can reports whether the actor holds the capability.
func (a Actor) Can(c Capability) bool {
	return a.Role.Can(c)
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
