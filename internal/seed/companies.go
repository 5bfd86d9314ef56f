package seed

// Company is an entry of the generator's company pool.
type Company struct {
	Name     string
	URN      string
	Industry string
	Size     string // small, medium or large
}

var sizeRanges = map[string]CountRange{ //nolint:gochecknoglobals // reference data
	"small":  {Start: 11, End: 200},
	"medium": {Start: 1001, End: 5000},
	"large":  {Start: 10001, End: 100000},
}

// sizeWeights make larger companies hire and lose more people.
var sizeWeights = map[string]int{"small": 1, "medium": 2, "large": 3} //nolint:gochecknoglobals // reference data

// DefaultCompanies is the built-in pool of established companies and startups.
var DefaultCompanies = []Company{ //nolint:gochecknoglobals // reference data
	{Name: "Google", URN: "urn:li:fs_company:1441", Industry: "Technology", Size: "large"},
	{Name: "Microsoft", URN: "urn:li:fs_company:1035", Industry: "Technology", Size: "large"},
	{Name: "Amazon", URN: "urn:li:fs_company:1586", Industry: "E-commerce", Size: "large"},
	{Name: "Apple", URN: "urn:li:fs_company:162479", Industry: "Technology", Size: "large"},
	{Name: "Meta", URN: "urn:li:fs_company:10667", Industry: "Social Media", Size: "large"},
	{Name: "Netflix", URN: "urn:li:fs_company:165158", Industry: "Entertainment", Size: "large"},
	{Name: "Spotify", URN: "urn:li:fs_company:207470", Industry: "Music", Size: "medium"},
	{Name: "Airbnb", URN: "urn:li:fs_company:309694", Industry: "Travel", Size: "medium"},
	{Name: "Uber", URN: "urn:li:fs_company:1815218", Industry: "Transportation", Size: "large"},
	{Name: "Lyft", URN: "urn:li:fs_company:2620735", Industry: "Transportation", Size: "medium"},
	{Name: "Salesforce", URN: "urn:li:fs_company:3185", Industry: "CRM", Size: "large"},
	{Name: "Adobe", URN: "urn:li:fs_company:1480", Industry: "Software", Size: "large"},
	{Name: "Stripe", URN: "urn:li:fs_company:2135371", Industry: "Fintech", Size: "medium"},
	{Name: "Dropbox", URN: "urn:li:fs_company:167251", Industry: "Cloud Storage", Size: "medium"},
	{Name: "Shopify", URN: "urn:li:fs_company:784652", Industry: "E-commerce", Size: "medium"},
	{Name: "Twilio", URN: "urn:li:fs_company:400528", Industry: "Communication", Size: "medium"},
	{Name: "TechNova", URN: "urn:li:fs_company:90000001", Industry: "AI/ML", Size: "small"},
	{Name: "QuantumLeap", URN: "urn:li:fs_company:90000002", Industry: "Quantum Computing", Size: "small"},
	{Name: "GreenWave", URN: "urn:li:fs_company:90000003", Industry: "Clean Energy", Size: "small"},
	{Name: "HealthPulse", URN: "urn:li:fs_company:90000004", Industry: "Health Tech", Size: "small"},
	{Name: "DataSphere", URN: "urn:li:fs_company:90000005", Industry: "Big Data", Size: "small"},
	{Name: "RoboMinds", URN: "urn:li:fs_company:90000006", Industry: "Robotics", Size: "small"},
	{Name: "FinFlow", URN: "urn:li:fs_company:90000007", Industry: "Fintech", Size: "small"},
}

var (
	firstNames = []string{"Ava", "Ben", "Chloe", "Dev", "Elena", "Farid", "Grace", "Hiro", "Ines", "Jonas", "Kira", "Luis", "Maya", "Noah", "Omar", "Priya", "Quinn", "Rosa", "Sam", "Tariq"}  //nolint:gochecknoglobals // reference data
	lastNames  = []string{"Anders", "Brown", "Chen", "Diaz", "Evans", "Fischer", "Garcia", "Huang", "Ito", "Johnson", "Kim", "Lopez", "Müller", "Nguyen", "Okafor", "Patel", "Rossi", "Singh"} //nolint:gochecknoglobals // reference data
	locations  = []string{"San Francisco, CA", "Seattle, WA", "New York, NY", "Austin, TX", "Boston, MA", "London, UK", "Berlin, DE", "Toronto, CA"}                                           //nolint:gochecknoglobals // reference data
	schools    = []string{"Stanford University", "Massachusetts Institute of Technology", "University of Washington", "Georgia Institute of Technology", "San Jose State University"}          //nolint:gochecknoglobals // reference data
	fields     = []string{"Computer Science", "Data Science", "Electrical Engineering", "Information Technology"}                                                                              //nolint:gochecknoglobals // reference data
	skillPool  = []string{"Go", "Python", "Kubernetes", "SQL", "Machine Learning", "Leadership", "Product Strategy", "Sales", "Design Systems", "Distributed Systems"}                         //nolint:gochecknoglobals // reference data
)
