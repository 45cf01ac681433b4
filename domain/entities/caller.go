package entities

// Role is the account role of a caller, as asserted by the identity provider
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

// Capability is a permission checked before invoking the core
type Capability string

const (
	CapFinalizeDraws  Capability = "finalize_draws"
	CapViewAllReports Capability = "view_all_reports"
	CapViewOwnReport  Capability = "view_own_report"
	CapRecordSales    Capability = "record_sales"
	CapViewAllWinners Capability = "view_all_winners"
	CapViewOwnWinners Capability = "view_own_winners"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin:  {CapFinalizeDraws, CapViewAllReports, CapViewAllWinners},
	RoleSeller: {CapViewOwnReport, CapRecordSales, CapViewOwnWinners},
}

// Caller is the authenticated principal of a request
type Caller struct {
	Subject  string
	Role     Role
	SellerID int64 // set for sellers
}

// Can reports whether the caller holds the capability
func (c Caller) Can(capability Capability) bool {
	for _, granted := range roleCapabilities[c.Role] {
		if granted == capability {
			return true
		}
	}
	return false
}

// ReportScope returns the widest report scope the caller may request.
// Admins may narrow to a seller; sellers are always restricted to themselves
// and only see draws with results.
func (c Caller) ReportScope(requestedSellerID *int64) (ReportScope, error) {
	if c.Can(CapViewAllReports) {
		if requestedSellerID != nil {
			return SingleSeller(*requestedSellerID), nil
		}
		return AllSellers(), nil
	}
	if c.Can(CapViewOwnReport) {
		if requestedSellerID != nil && *requestedSellerID != c.SellerID {
			return ReportScope{}, ErrForbidden
		}
		return OwnSeller(c.SellerID), nil
	}
	return ReportScope{}, ErrForbidden
}
