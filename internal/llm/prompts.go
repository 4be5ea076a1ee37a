package llm

const extractorSystemPrompt = `You extract one field from a message sent to a real-estate assistant in Pune, India.
Messages may be in English, Marathi or a mix of both. Reply with the value only, no explanation.
If the message does not clearly contain the requested field, reply exactly UNCLEAR.`

var extractorPrompts = map[string]string{
	KindInterest: `Field: property interest.
Allowed values: buy, rent, commercial, plot.
"flat", "home", "apartment" for purchase mean buy. "office" or "shop" mean commercial. "land" means plot.
Message: %s`,
	KindLocation: `Field: locality or area name.
Reply with the locality name in English spelling, for example Kothrud, Baner, Wakad, Hinjewadi.
Message: %s`,
	KindBudget: `Field: maximum budget in Indian rupees.
Reply with a whole number of rupees using digits only. 1 lakh = 100000, 1 crore = 10000000.
Message: %s`,
}
