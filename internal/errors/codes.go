package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps these codes to user-facing messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token revoked on logout
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email
	AuthEmailNotVerified   = "AUTH_EMAIL_NOT_VERIFIED"  // email verification pending
	AuthCodeInvalid        = "AUTH_CODE_INVALID"        // wrong verification code
	AuthCodeExpired        = "AUTH_CODE_EXPIRED"        // verification code expired
	AuthAlreadyVerified    = "AUTH_ALREADY_VERIFIED"    // account already verified

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // no access
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED"  // no permission for the operation
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // role missing from token
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // admin only
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"     // owner only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceDeleted       = "RESOURCE_DELETED"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Products (PRODUCT_) ====================
	ProductNotFound        = "PRODUCT_NOT_FOUND"
	ProductInvalidCategory = "PRODUCT_INVALID_CATEGORY"
	ProductInvalidCompany  = "PRODUCT_INVALID_COMPANY"
	ProductInvalidPrice    = "PRODUCT_INVALID_PRICE"

	// ==================== Reviews (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewInvalidRating = "REVIEW_INVALID_RATING" // rating outside 1..5
	ReviewAlreadyExists = "REVIEW_ALREADY_EXISTS" // one review per user per product

	// ==================== Cart (CART_) ====================
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"
	CartEmpty           = "CART_EMPTY"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderMissingCharges    = "ORDER_MISSING_CHARGES"    // tax or shipping fee not provided
	OrderInvalidStatus     = "ORDER_INVALID_STATUS"     // unknown status value
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION" // status cannot move backwards

	// ==================== Payments (PAYMENT_) ====================
	PaymentFailed         = "PAYMENT_FAILED"
	PaymentNotFound       = "PAYMENT_NOT_FOUND"
	PaymentAmountMismatch = "PAYMENT_AMOUNT_MISMATCH" // provider amount differs from order total
	PaymentAlreadyPaid    = "PAYMENT_ALREADY_PAID"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
