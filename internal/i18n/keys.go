package i18n

// Key identifies one user-facing message.
type Key string

const (
	KeyLanguageMenu   Key = "language_menu"
	KeyWelcome        Key = "welcome"
	KeyInterestMenu   Key = "interest_menu"
	KeyInvalidChoice  Key = "invalid_choice"
	KeyPropertyList   Key = "property_list"
	KeyPropertyItem   Key = "property_item"
	KeyNoMatches      Key = "no_matches"
	KeyPropertyDetail Key = "property_detail"
	KeyScheduleMenu   Key = "schedule_menu"

	KeyAskName             Key = "ask_name"
	KeyInvalidName         Key = "invalid_name"
	KeyAskPhone            Key = "ask_phone"
	KeyInvalidPhone        Key = "invalid_phone"
	KeyAskTime             Key = "ask_time"
	KeyInvalidTime         Key = "invalid_time"
	KeyAskRequirements     Key = "ask_requirements"
	KeyInvalidRequirements Key = "invalid_requirements"
	KeyAskFreeform         Key = "ask_freeform_requirement"

	KeyBookingConfirmed   Key = "booking_confirmed"
	KeyBookingFailed      Key = "booking_failed"
	KeyPreconditionFailed Key = "precondition_failed"
	KeyCatalogFailed      Key = "catalog_failed"
	KeyCompletedMenu      Key = "completed_menu"
	KeyAppointmentDetails Key = "appointment_details"
	KeyDetailsMenu        Key = "details_menu"
	KeyDetailsUnavailable Key = "details_unavailable"
	KeyDocumentMenu       Key = "document_menu"
	KeyDocumentLink       Key = "document_link"
	KeyDocumentCaption    Key = "document_caption"
	KeyDocumentFailed     Key = "document_failed"

	KeyGoodbye       Key = "goodbye"
	KeyStillThere    Key = "still_there"
	KeyMediaReceived Key = "media_received"
	KeySystemError   Key = "system_error"

	KeyHelpLanguage  Key = "help_language"
	KeyHelpWelcome   Key = "help_welcome"
	KeyHelpInterest  Key = "help_interest"
	KeyHelpProperty  Key = "help_property"
	KeyHelpSchedule  Key = "help_schedule"
	KeyHelpCollect   Key = "help_collect"
	KeyHelpCompleted Key = "help_completed"

	KeyInterestBuy        Key = "interest_buy"
	KeyInterestRent       Key = "interest_rent"
	KeyInterestCommercial Key = "interest_commercial"
	KeyInterestPlot       Key = "interest_plot"

	KeyDocBrochure   Key = "doc_brochure"
	KeyDocFloorPlan  Key = "doc_floor_plan"
	KeyDocPriceSheet Key = "doc_price_sheet"

	KeyReqNone       Key = "req_none"
	KeyReqParking    Key = "req_parking"
	KeyReqWheelchair Key = "req_wheelchair"
	KeyReqVastu      Key = "req_vastu"

	KeyNotSpecified Key = "not_specified"

	// Operator-facing texts. These are always rendered in English.
	KeyAgentAlert Key = "agent_alert"
	KeyCRMLog     Key = "crm_log"
	KeyEmailAlert Key = "email_alert"
)
