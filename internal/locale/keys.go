package locale

// Message key constants for localization
// All user-facing messages go through these constants; handlers never
// embed display text.

const (
	// ============================================================================
	// START AND MENUS
	// ============================================================================

	Welcome        = "Welcome"
	WelcomeAddMe   = "WelcomeAddMe"
	WelcomeUpdates = "WelcomeUpdates"

	MainMenuUser  = "MainMenuUser"
	MainMenuAdmin = "MainMenuAdmin"

	// Reply keyboard buttons. Incoming menu presses are matched against
	// these labels in every supported language.
	ButtonUploadPhoto   = "ButtonUploadPhoto"
	ButtonMyTickets     = "ButtonMyTickets"
	ButtonBackToMenu    = "ButtonBackToMenu"
	ButtonStartDraw     = "ButtonStartDraw"
	ButtonShowPhoto     = "ButtonShowPhoto"
	ButtonDeleteTicket  = "ButtonDeleteTicket"
	ButtonArchiveRaffle = "ButtonArchiveRaffle"
	ButtonCheckSettings = "ButtonCheckSettings"

	// ============================================================================
	// PHOTO UPLOAD
	// ============================================================================

	PhotoUploadInstructions = "PhotoUploadInstructions"
	SendPhotoOnly           = "SendPhotoOnly"
	PhotoRegistered         = "PhotoRegistered"    // f1: ticket number
	TicketAnnouncement      = "TicketAnnouncement" // f1: username, f2: ticket number

	// ============================================================================
	// MY TICKETS
	// ============================================================================

	NoTickets      = "NoTickets"
	YourTickets    = "YourTickets"  // f1: count
	YourTicket     = "YourTicket"   // f1: ticket number
	TicketButton   = "TicketButton" // f1: ticket number
	TicketNotFound = "TicketNotFound"

	// ============================================================================
	// DRAW
	// ============================================================================

	DrawInProgress        = "DrawInProgress"
	NoActiveTickets       = "NoActiveTickets"
	DrawResult            = "DrawResult" // f1: ticket number, f2: username
	ButtonConfirmWinner   = "ButtonConfirmWinner"
	ButtonRejectTicket    = "ButtonRejectTicket"
	WinnerAnnounced       = "WinnerAnnounced" // f1: ticket number, f2: username
	WinnerPublished       = "WinnerPublished"
	TicketUnavailable     = "TicketUnavailable"
	IncorrectTicketNumber = "IncorrectTicketNumber"
	IncorrectRequest      = "IncorrectRequest"
	AskRejectReason       = "AskRejectReason"
	TicketRejected        = "TicketRejected" // f1: ticket number, f2: reason
	DrawContinues         = "DrawContinues"

	// ============================================================================
	// ADMIN TICKET MANAGEMENT
	// ============================================================================

	AskTicketNumberView   = "AskTicketNumberView"
	AskTicketNumberDelete = "AskTicketNumberDelete"
	AskDeleteReason       = "AskDeleteReason"
	TicketDeleted         = "TicketDeleted" // f1: ticket number, f2: reason
	TicketInfo            = "TicketInfo"    // f1: ticket number, f2: status
	TicketStatusActive    = "TicketStatusActive"
	TicketStatusRejected  = "TicketStatusRejected"
	TicketStatusWon       = "TicketStatusWon"

	// ============================================================================
	// ARCHIVE AND SETTINGS
	// ============================================================================

	RaffleArchived     = "RaffleArchived"
	SettingsInfo       = "SettingsInfo" // f1: log channel, f2: admin IDs, f3: token prefix
	InsufficientRights = "InsufficientRights"
	NoRights           = "NoRights"

	// ============================================================================
	// GENERIC ERRORS
	// ============================================================================

	ErrorGeneric = "ErrorGeneric"
)
