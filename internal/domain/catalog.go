package domain

// Languages maps supported language codes to their display names. Prompts
// sent to the model name the language by display name, not code.
var Languages = map[string]string{
	"en":    "English",
	"es":    "Español",
	"fr":    "Français",
	"de":    "Deutsch",
	"pt":    "Português",
	"ru":    "Русский",
	"ar":    "العربية",
	"zh-CN": "简体中文",
	"ja":    "日本語",
	"hi":    "हिन्दी",
	"bn":    "বাংলা",
	"id":    "Bahasa Indonesia",
	"sw":    "Kiswahili",
	"rw":    "Kinyarwanda",
	"ur":    "اردو",
}

// LanguageName resolves a language code to its display name.
func LanguageName(code string) (string, bool) {
	name, ok := Languages[code]
	return name, ok
}

// JobCategory groups the selectable roles for batch-mode interviews.
type JobCategory struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// JobCategories is the fixed role catalog offered by the role picker.
var JobCategories = []JobCategory{
	{Name: "Tech", Roles: []string{"Software Engineer", "Data Scientist", "UX/UI Designer", "Product Manager", "DevOps Engineer", "Cybersecurity Analyst"}},
	{Name: "Education", Roles: []string{"High School Teacher", "University Professor", "Academic Advisor", "Librarian", "Instructional Designer"}},
	{Name: "Tourism & Hospitality", Roles: []string{"Tour Guide", "Hotel Manager", "Travel Agent", "Event Coordinator", "Chef"}},
	{Name: "Healthcare", Roles: []string{"Registered Nurse", "Doctor", "Medical Assistant", "Pharmacist", "Physical Therapist"}},
	{Name: "Business & Finance", Roles: []string{"Accountant", "Financial Analyst", "Management Consultant", "Marketing Manager", "Human Resources Manager"}},
}
