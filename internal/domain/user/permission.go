package user

type Permission string

const (
	// Attendance
	PermissionAttendanceView     Permission = "attendance.view"
	PermissionAttendanceEdit     Permission = "attendance.edit"
	PermissionAttendanceFinalize Permission = "attendance.finalize"

	// Payroll
	PermissionPayrollView    Permission = "payroll.view"
	PermissionPayrollCompute Permission = "payroll.compute"
	PermissionPayrollClear   Permission = "payroll.clear"

	// Payments
	PermissionPaymentPost Permission = "payment.post"
	PermissionPaymentView Permission = "payment.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionAttendanceView,
		PermissionAttendanceEdit,
		PermissionAttendanceFinalize,
		PermissionPayrollView,
		PermissionPayrollCompute,
		PermissionPayrollClear,
		PermissionPaymentPost,
		PermissionPaymentView,
	},
	RoleManager: {
		PermissionAttendanceView,
		PermissionAttendanceEdit,
		PermissionAttendanceFinalize,
		PermissionPayrollView,
		PermissionPayrollCompute,
		PermissionPayrollClear,
		PermissionPaymentView,
	},
	RoleEmployee: {
		PermissionAttendanceView,
		PermissionPayrollView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
