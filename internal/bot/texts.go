package bot

const (
	ButtonSearch  = "🔍 Find vacancies"
	ButtonProfile = "📊 Profile"
	ButtonStats   = "📈 Stats"
	ButtonHelp    = "ℹ️ Help"

	CommandStart   = "/start"
	CommandSearch  = "/search"
	CommandProfile = "/profile"
	CommandStats   = "/stats"
	CommandHelp    = "/help"
	CommandLetter  = "/letter"
	CommandApplied = "/applied"
)

const (
	textGreeting      = "Hi, %s! 👋\n\nI am Job Helper. I will help you find a job!"
	textNoProfile     = "❌ Profile not found. Send /start"
	textProfileExists = "You already have a profile."
	textSearching     = "🔎 Looking for vacancies... (20-30 seconds)"
	textStats         = "📊 Vacancies found: <b>%d</b>"
	textUnknown       = "Use the buttons below or /help."
	textFailure       = "⚠️ Something went wrong, please try again later."
	textLetterUsage   = "Send /letter &lt;vacancy id&gt;, for example /letter 123456"
	textAppliedUsage  = "Send /applied &lt;vacancy id&gt;, for example /applied 123456"
	textNoVacancy     = "❌ Vacancy %s is not in your list. Run a search first."
	textLetterHeader  = "✉️ Cover letter for <b>%s</b>:\n\n%s"
	textApplied       = "✅ Marked as responded: <b>%s</b>"

	textProfile = "👤 <b>Profile</b>\n\n" +
		"Name: %s\n" +
		"Experience: %d years\n" +
		"Grade: %s\n" +
		"Salary: %s – %s ₽\n" +
		"Roles: %s\n" +
		"Cities: %s\n" +
		"Technologies: %s"

	textHelp = "📖 <b>Job Helper</b>\n\n" +
		ButtonSearch + " - search on hh.ru\n" +
		ButtonProfile + " - your data\n" +
		ButtonStats + " - stored vacancies\n" +
		ButtonHelp + " - this help\n\n" +
		CommandLetter + " &lt;id&gt; - draft a cover letter\n" +
		CommandApplied + " &lt;id&gt; - mark a vacancy as responded"
)

// MainKeyboard is shown once a profile exists.
var MainKeyboard = [][]string{
	{ButtonSearch, ButtonProfile},
	{ButtonStats, ButtonHelp},
}
