package response

const (
	ServerError = "Server error, try again later"
	//----------------------
	RecentMoviesUpdateError = "Error updating recent movies"
	RecentMoviesFetchError  = "Error fetching recent movies"
	MovieDetailsError       = "Error fetching movie details"
	SearchError             = "Error fetching search results"
	QueryRequired           = "Query parameter is required."
	InvalidSearchType       = "Invalid type parameter."
	MovieNotFound           = "Movie not found"
	//----------------------
	UserNotFound      = "User not found"
	EmailNotFound     = "No user with that email"
	EmailRequired     = "Email is required."
	AccountDeleted    = "Account deleted successfully"
	AccountDeleteFail = "Error deleting account"
	//----------------------
	AccessDenied        = "Access denied. Please log in."
	InvalidToken        = "Invalid or expired token. Please log in again."
	InvalidCredentials  = "Invalid credentials"
	FederatedAuthFailed = "Google authentication failed"
	//----------------------
	RegisterSuccess   = "User registered successfully"
	LoginSuccess      = "Login successful"
	LogoutSuccess     = "Logout successful"
	ResetLinkSent     = "Password reset link sent to your email."
	ResetSuccess      = "Password has been reset successfully."
	ResetTokenInvalid = "Token is invalid or has expired"
	ResetRequestError = "Error processing request"
	ResetError        = "Error resetting password"
	//----------------------
	BadRequestBody = "Incorrect request body"
	//----------------------
	UserAlreadyExist = "Email or username already taken"
	//----------------------
	PhotoRequired       = "Photo file is required"
	PhotoUploaded       = "Photo uploaded successfully"
	PhotoTooLarge       = "Photo exceeds the size limit"
	PhotoInvalidFormat  = "Photo format is not supported"
	InternalServerError = "Internal server error"
	//----------------------
)
