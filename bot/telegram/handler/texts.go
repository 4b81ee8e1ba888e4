package handler

// Main menu labels double as callback payloads, so changing them changes
// the wire format for already-rendered keyboards.
const (
	mainMenuTitle = "Welcome To The Control Center!\n\nPlease Choose your Action"

	labelMonitoring = "Monitoring And Status"
	labelTraining   = "Training Control"
	labelReports    = "Reporting And Visualization"
	labelSettings   = "Settings"
)

const (
	pressedButtonPrefix = "You Pressed Button: "

	genericErrorText  = "An error occurred. Please try again or contact support."
	callbackErrorText = "Failed to process your request."
	unknownButtonText = "Unknown button: "
	echoPrefix        = "You said: "

	helpHeader     = "📋 Available Commands:"
	noCommandsText = "No commands available."
)
