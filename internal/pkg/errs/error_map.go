/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Catalog and Chat Business Logic Errors
	ErrCourseNotFound:        {Code: ErrCourseNotFound, Message: "Course not found.", Status: http.StatusNotFound},
	ErrCourseCategoryInvalid: {Code: ErrCourseCategoryInvalid, Message: "Unknown course category.", Status: http.StatusBadRequest},
	ErrRatingOutOfRange:      {Code: ErrRatingOutOfRange, Message: "Rating must be between 1 and 5.", Status: http.StatusBadRequest},
	ErrNewsNotFound:          {Code: ErrNewsNotFound, Message: "News item not found.", Status: http.StatusNotFound},
	ErrEmptyMessage:          {Code: ErrEmptyMessage, Message: "Message cannot be empty.", Status: http.StatusBadRequest},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},

	// 3xxx: User, Session, and Security Errors
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Invalid username.", Status: http.StatusBadRequest},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "Invalid email address.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Invalid password.", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "Username or email is already taken.", Status: http.StatusConflict},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid credentials.", Status: http.StatusUnauthorized},

	ErrMissingToken: {Code: ErrMissingToken, Message: "Token is missing or malformed. Please provide a valid token.", Status: http.StatusUnauthorized},
	ErrInvalidToken: {Code: ErrInvalidToken, Message: "Invalid token. Please provide a valid token.", Status: http.StatusUnauthorized},
	ErrExpiredToken: {Code: ErrExpiredToken, Message: "Session expired. Please sign in again.", Status: http.StatusUnauthorized},
	ErrMissingRole:  {Code: ErrMissingRole, Message: "Token carries no role.", Status: http.StatusForbidden},
	ErrForbidden:    {Code: ErrForbidden, Message: "Permission denied.", Status: http.StatusForbidden},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
