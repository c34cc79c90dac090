package utils

// Embed colors shared by the command surface.
const (
	SuccessColor = 0x2ECC71
	ErrorColor   = 0xE74C3C
	InfoColor    = 0x3498DB
	QuestColor   = 0xF1C40F
)

// QuestsPerPage bounds /list paginator pages.
const QuestsPerPage = 5
