/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Catalog and Chat Business Logic Errors
const (
	// ErrCourseNotFound indicates that the requested course does not exist.
	ErrCourseNotFound = 2101

	// ErrCourseCategoryInvalid indicates an unknown course category.
	ErrCourseCategoryInvalid = 2102

	// ErrRatingOutOfRange indicates a course rating outside 1..5.
	ErrRatingOutOfRange = 2103

	// ErrNewsNotFound indicates that the requested news item does not exist.
	ErrNewsNotFound = 2151

	// ErrEmptyMessage indicates that the chat message body was empty after trimming.
	ErrEmptyMessage = 2201

	// ErrMessageContentTooLong indicates that the user's message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2202
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidUsername indicates a missing or malformed username.
	ErrInvalidUsername = 3001

	// ErrInvalidEmail indicates a missing or malformed email address.
	ErrInvalidEmail = 3002

	// ErrInvalidPassword indicates a missing password or one outside the allowed length.
	ErrInvalidPassword = 3003

	// ErrUserAlreadyExists indicates a username or email collision on registration.
	ErrUserAlreadyExists = 3004

	// ErrUserNotFound indicates that no account matches the given username or id.
	ErrUserNotFound = 3005

	// ErrInvalidCredentials indicates that the password did not match.
	ErrInvalidCredentials = 3006

	// ErrMissingToken indicates that no bearer token was supplied.
	ErrMissingToken = 3101

	// ErrInvalidToken indicates a malformed token or a failed signature check.
	ErrInvalidToken = 3102

	// ErrExpiredToken indicates a well-signed token past its expiry.
	ErrExpiredToken = 3103

	// ErrMissingRole indicates token claims without a role.
	ErrMissingRole = 3201

	// ErrForbidden indicates that the caller's role is not permitted.
	ErrForbidden = 3202
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
