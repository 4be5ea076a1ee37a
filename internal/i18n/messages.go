package i18n

// catalog holds every user-facing text keyed by (Key, Language). Placeholders
// are text/template fields; a missing parameter is a render error.
var catalog = map[Key]map[Language]string{
	KeyLanguageMenu: {
		English: "Please choose your language / कृपया तुमची भाषा निवडा:\n1. English\n2. मराठी (Marathi)",
		Marathi: "Please choose your language / कृपया तुमची भाषा निवडा:\n1. English\n2. मराठी (Marathi)",
	},
	KeyWelcome: {
		English: "Welcome to {{.Brand}}! I can help you find a property and book a site visit.\nSend anything to continue, or reply 1 for English / 2 for मराठी.",
		Marathi: "{{.Brand}} मध्ये आपले स्वागत आहे! मी तुम्हाला मालमत्ता शोधण्यात आणि भेट बुक करण्यात मदत करू शकतो.\nपुढे जाण्यासाठी काहीही पाठवा, किंवा English साठी 1 / मराठीसाठी 2 पाठवा.",
	},
	KeyInterestMenu: {
		English: "What are you looking for?\n1. Buy a home\n2. Rent a home\n3. Commercial space\n4. Plot / land\nYou can also describe it, e.g. \"2BHK in Kothrud under 80 lakh\".",
		Marathi: "तुम्ही काय शोधत आहात?\n1. घर खरेदी\n2. घर भाड्याने\n3. व्यावसायिक जागा\n4. प्लॉट / जमीन\nतुम्ही वर्णनही करू शकता, उदा. \"कोथरूडमध्ये 80 लाखांखाली 2BHK\".",
	},
	KeyInvalidChoice: {
		English: "Sorry, I didn't understand that.\n{{.Prompt}}",
		Marathi: "माफ करा, मला समजले नाही.\n{{.Prompt}}",
	},
	KeyPropertyList: {
		English: "Here are the properties that match:\n{{.Items}}\nReply with the property number to see details.",
		Marathi: "तुमच्यासाठी जुळणाऱ्या मालमत्ता:\n{{.Items}}\nतपशील पाहण्यासाठी मालमत्तेचा क्रमांक पाठवा.",
	},
	KeyPropertyItem: {
		English: "{{.Index}}. {{.Title}}, {{.Location}} ({{.Price}})",
		Marathi: "{{.Index}}. {{.Title}}, {{.Location}} ({{.Price}})",
	},
	KeyNoMatches: {
		English: "Sorry, no properties match right now. Send \"new search\" to try different options.",
		Marathi: "माफ करा, सध्या कोणतीही मालमत्ता जुळत नाही. वेगळे पर्याय पाहण्यासाठी \"नवीन शोध\" पाठवा.",
	},
	KeyPropertyDetail: {
		English: "{{.Title}}\nLocation: {{.Location}}\nPrice: {{.Price}}\nArea: {{.Area}} sq ft\nAmenities: {{.Amenities}}",
		Marathi: "{{.Title}}\nठिकाण: {{.Location}}\nकिंमत: {{.Price}}\nक्षेत्रफळ: {{.Area}} चौ. फूट\nसुविधा: {{.Amenities}}",
	},
	KeyScheduleMenu: {
		English: "1. Schedule a site visit\n2. Back to the list",
		Marathi: "1. भेट ठरवा\n2. यादीकडे परत",
	},
	KeyAskName: {
		English: "Great! Please tell me your full name.",
		Marathi: "छान! कृपया तुमचे पूर्ण नाव सांगा.",
	},
	KeyInvalidName: {
		English: "Please enter a valid name (at least 2 letters).",
		Marathi: "कृपया योग्य नाव लिहा (किमान 2 अक्षरे).",
	},
	KeyAskPhone: {
		English: "Thanks {{.Name}}! Please share your 10-digit mobile number.",
		Marathi: "धन्यवाद {{.Name}}! कृपया तुमचा 10 अंकी मोबाईल नंबर पाठवा.",
	},
	KeyInvalidPhone: {
		English: "That doesn't look like a 10-digit mobile number. Please try again, e.g. 9876543210.",
		Marathi: "हा 10 अंकी मोबाईल नंबर वाटत नाही. कृपया पुन्हा पाठवा, उदा. ९८७६५४३२१०.",
	},
	KeyAskTime: {
		English: "When would you like to visit? (e.g. 25/12/2025 at 11 am)",
		Marathi: "तुम्हाला कधी भेट द्यायची आहे? (उदा. 25/12/2025 सकाळी 11 वाजता)",
	},
	KeyInvalidTime: {
		English: "Please tell me a preferred date and time for the visit.",
		Marathi: "कृपया भेटीसाठी सोयीची तारीख आणि वेळ सांगा.",
	},
	KeyAskRequirements: {
		English: "Any special requirements?\n1. None\n2. Parking\n3. Wheelchair access\n4. Vastu-compliant\n5. Other (type it)",
		Marathi: "काही विशेष गरजा आहेत का?\n1. काही नाही\n2. पार्किंग\n3. व्हीलचेअर प्रवेश\n4. वास्तु-अनुरूप\n5. इतर (लिहा)",
	},
	KeyInvalidRequirements: {
		English: "Please reply with a number from 1 to 5.",
		Marathi: "कृपया 1 ते 5 मधील क्रमांक पाठवा.",
	},
	KeyAskFreeform: {
		English: "Please describe your requirement.",
		Marathi: "कृपया तुमची गरज लिहा.",
	},
	KeyBookingConfirmed: {
		English: "Your site visit is booked!\nProperty: {{.Title}}\nName: {{.Name}}\nPhone: {{.Phone}}\nTime: {{.Time}}\nRequirements: {{.Requirements}}\nBooking ID: {{.AppointmentID}}\nOur agent will call you to confirm.",
		Marathi: "तुमची भेट बुक झाली आहे!\nमालमत्ता: {{.Title}}\nनाव: {{.Name}}\nफोन: {{.Phone}}\nवेळ: {{.Time}}\nविशेष गरजा: {{.Requirements}}\nबुकिंग आयडी: {{.AppointmentID}}\nआमचे एजंट पुष्टी करण्यासाठी तुम्हाला कॉल करतील.",
	},
	KeyBookingFailed: {
		English: "Sorry, we couldn't book your visit right now. Send any message to try again.",
		Marathi: "माफ करा, सध्या तुमची भेट बुक करता आली नाही. पुन्हा प्रयत्न करण्यासाठी कोणताही संदेश पाठवा.",
	},
	KeyPreconditionFailed: {
		English: "Some of your details are missing or invalid. Please send \"new search\" to start again.",
		Marathi: "तुमची काही माहिती अपूर्ण किंवा चुकीची आहे. पुन्हा सुरू करण्यासाठी \"नवीन शोध\" पाठवा.",
	},
	KeyCatalogFailed: {
		English: "Sorry, I couldn't search properties right now. Please try again in a moment.",
		Marathi: "माफ करा, सध्या मालमत्ता शोधता आल्या नाहीत. कृपया थोड्या वेळाने पुन्हा प्रयत्न करा.",
	},
	KeyCompletedMenu: {
		English: "What would you like to do next?\n1. View appointment details\n2. Property documents\n3. New search\n4. End",
		Marathi: "पुढे काय करायचे आहे?\n1. भेटीचा तपशील पहा\n2. मालमत्तेची कागदपत्रे\n3. नवीन शोध\n4. समाप्त",
	},
	KeyAppointmentDetails: {
		English: "Appointment {{.AppointmentID}}\nProperty: {{.Title}}, {{.Location}}\nName: {{.Name}}\nPhone: {{.Phone}}\nTime: {{.Time}}\nRequirements: {{.Requirements}}\nStatus: {{.Status}}",
		Marathi: "भेट {{.AppointmentID}}\nमालमत्ता: {{.Title}}, {{.Location}}\nनाव: {{.Name}}\nफोन: {{.Phone}}\nवेळ: {{.Time}}\nविशेष गरजा: {{.Requirements}}\nस्थिती: {{.Status}}",
	},
	KeyDetailsMenu: {
		English: "1. Property documents\n0. Back",
		Marathi: "1. मालमत्तेची कागदपत्रे\n0. मागे",
	},
	KeyDetailsUnavailable: {
		English: "Sorry, I couldn't fetch your appointment details right now.",
		Marathi: "माफ करा, सध्या तुमच्या भेटीचा तपशील मिळू शकला नाही.",
	},
	KeyDocumentMenu: {
		English: "Which document would you like?\n1. Brochure\n2. Floor plan\n3. Price sheet\n0. Back",
		Marathi: "तुम्हाला कोणते कागदपत्र हवे आहे?\n1. माहितीपत्रक\n2. मजला आराखडा\n3. किंमत यादी\n0. मागे",
	},
	KeyDocumentLink: {
		English: "{{.Document}} for {{.Title}}: {{.URL}}",
		Marathi: "{{.Title}} साठी {{.Document}}: {{.URL}}",
	},
	KeyDocumentCaption: {
		English: "{{.Document}} for {{.Title}}",
		Marathi: "{{.Title}} साठी {{.Document}}",
	},
	KeyDocumentFailed: {
		English: "Sorry, that document isn't available right now.",
		Marathi: "माफ करा, ते कागदपत्र सध्या उपलब्ध नाही.",
	},
	KeyGoodbye: {
		English: "Thank you for chatting with {{.Brand}}! Send \"hi\" anytime to start again.",
		Marathi: "{{.Brand}} शी संवाद साधल्याबद्दल धन्यवाद! पुन्हा सुरू करण्यासाठी कधीही \"नमस्कार\" पाठवा.",
	},
	KeyStillThere: {
		English: "Are you still there? Reply to continue where you left off, or send \"end\" to close this chat.",
		Marathi: "तुम्ही अजून आहात का? जिथे थांबलात तिथून पुढे जाण्यासाठी उत्तर द्या, किंवा संवाद बंद करण्यासाठी \"समाप्त\" पाठवा.",
	},
	KeyMediaReceived: {
		English: "Thanks, we received your file. Please reply in text to continue.",
		Marathi: "धन्यवाद, तुमची फाईल मिळाली. पुढे जाण्यासाठी कृपया मजकूर पाठवा.",
	},
	KeySystemError: {
		English: "Sorry, something went wrong. Let's start again.\n{{.Prompt}}",
		Marathi: "माफ करा, काहीतरी चूक झाली. पुन्हा सुरू करूया.\n{{.Prompt}}",
	},
	KeyHelpLanguage: {
		English: "Reply 1 for English or 2 for Marathi.",
		Marathi: "English साठी 1 किंवा मराठीसाठी 2 पाठवा.",
	},
	KeyHelpWelcome: {
		English: "Send any message to start searching. Commands: \"new search\", \"change language\", \"end\".",
		Marathi: "शोध सुरू करण्यासाठी कोणताही संदेश पाठवा. आदेश: \"नवीन शोध\", \"भाषा बदला\", \"समाप्त\".",
	},
	KeyHelpInterest: {
		English: "Reply 1-4 to pick a category, or describe what you want (type, area, budget).",
		Marathi: "प्रकार निवडण्यासाठी 1-4 पाठवा, किंवा तुम्हाला काय हवे ते लिहा (प्रकार, परिसर, बजेट).",
	},
	KeyHelpProperty: {
		English: "Reply with a property number from the list. Send \"new search\" to change your search.",
		Marathi: "यादीतील मालमत्तेचा क्रमांक पाठवा. शोध बदलण्यासाठी \"नवीन शोध\" पाठवा.",
	},
	KeyHelpSchedule: {
		English: "Reply 1 to schedule a visit or 2 to go back to the list.",
		Marathi: "भेट ठरवण्यासाठी 1 किंवा यादीकडे परत जाण्यासाठी 2 पाठवा.",
	},
	KeyHelpCollect: {
		English: "I need your name, mobile number, preferred visit time and any special requirements to book the visit.",
		Marathi: "भेट बुक करण्यासाठी मला तुमचे नाव, मोबाईल नंबर, भेटीची वेळ आणि विशेष गरजा हव्या आहेत.",
	},
	KeyHelpCompleted: {
		English: "Reply 1 for appointment details, 2 for documents, 3 for a new search or 4 to end.",
		Marathi: "भेटीच्या तपशीलासाठी 1, कागदपत्रांसाठी 2, नवीन शोधासाठी 3 किंवा समाप्त करण्यासाठी 4 पाठवा.",
	},
	KeyInterestBuy:        {English: "Buy", Marathi: "खरेदी"},
	KeyInterestRent:       {English: "Rent", Marathi: "भाड्याने"},
	KeyInterestCommercial: {English: "Commercial", Marathi: "व्यावसायिक"},
	KeyInterestPlot:       {English: "Plot", Marathi: "प्लॉट"},
	KeyDocBrochure:        {English: "Brochure", Marathi: "माहितीपत्रक"},
	KeyDocFloorPlan:       {English: "Floor plan", Marathi: "मजला आराखडा"},
	KeyDocPriceSheet:      {English: "Price sheet", Marathi: "किंमत यादी"},
	KeyReqNone:            {English: "None", Marathi: "काही नाही"},
	KeyReqParking:         {English: "Parking", Marathi: "पार्किंग"},
	KeyReqWheelchair:      {English: "Wheelchair access", Marathi: "व्हीलचेअर प्रवेश"},
	KeyReqVastu:           {English: "Vastu-compliant", Marathi: "वास्तु-अनुरूप"},
	KeyNotSpecified:       {English: "Not specified", Marathi: "नमूद नाही"},
	KeyAgentAlert: {
		English: "New site visit {{.AppointmentID}}: {{.Name}} ({{.Phone}}) for {{.Title}}, {{.Location}} at {{.Time}}. Requirements: {{.Requirements}}. Language: {{.Language}}.",
	},
	KeyCRMLog: {
		English: "booking={{.AppointmentID}} property={{.PropertyID}} name={{.Name}} phone={{.Phone}} time={{.Time}} requirements={{.Requirements}} language={{.Language}}",
	},
	KeyEmailAlert: {
		English: "A new site visit was booked.\n\nBooking: {{.AppointmentID}}\nProperty: {{.Title}}, {{.Location}}\nClient: {{.Name}}\nPhone: {{.Phone}}\nPreferred time: {{.Time}}\nRequirements: {{.Requirements}}\nLanguage: {{.Language}}",
	},
}

var marathiWeekdays = [7]string{"रविवार", "सोमवार", "मंगळवार", "बुधवार", "गुरुवार", "शुक्रवार", "शनिवार"}
