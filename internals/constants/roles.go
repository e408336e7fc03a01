package constants

// Role khớp với cột user_role trong bảng users
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "QUAN_LY_TOA"
	RoleStudent = "SINH_VIEN"
)

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleManager,
		RoleStudent,
	}

	ManagerAndAbove = []string{
		RoleAdmin,
		RoleManager,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)

// Thông báo lỗi phân quyền dùng chung
const (
	ErrOnlyManagersCanAccess = "Chỉ admin hoặc quản lý tòa mới được truy cập chức năng này."
	ErrOnlyAdminsCanAccess   = "Chỉ admin mới được truy cập chức năng này."
)
