package privacy

// Attribute is one piece of user data that automated decisions may read.
type Attribute struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Category groups related attributes under a display label.
type Category struct {
	Key        string      `json:"key"`
	Label      string      `json:"category"`
	Attributes []Attribute `json:"attributes"`
}

var catalog = []Category{
	{
		Key:   "user",
		Label: "Personal Information",
		Attributes: []Attribute{
			{"user.income", "Income", "Annual income for financial analysis"},
			{"user.creditScore", "Credit Score", "Credit score for loan eligibility"},
			{"user.dateOfBirth", "Date of Birth", "Age calculation for eligibility"},
			{"user.employmentStatus", "Employment Status", "Employment status for financial assessment"},
			{"user.address", "Address", "Location data for regional analysis"},
			{"user.email", "Email", "Contact information"},
			{"user.firstName", "First Name", "Personal identification"},
			{"user.lastName", "Last Name", "Personal identification"},
		},
	},
	{
		Key:   "accounts",
		Label: "Account Information",
		Attributes: []Attribute{
			{"accounts.balance", "Account Balance", "Current account balances"},
			{"accounts.accountType", "Account Type", "Types of accounts held"},
			{"accounts.accountNumber", "Account Number", "Account identifiers"},
			{"accounts.status", "Account Status", "Account status information"},
		},
	},
	{
		Key:   "transactions",
		Label: "Transaction Data",
		Attributes: []Attribute{
			{"transactions.amount", "Transaction Amount", "Transaction amounts for spending analysis"},
			{"transactions.category", "Transaction Category", "Spending categories"},
			{"transactions.description", "Transaction Description", "Transaction details"},
			{"transactions.type", "Transaction Type", "Debit or credit transactions"},
			{"transactions.createdAt", "Transaction Date", "When transactions occurred"},
			{"transactions.merchantName", "Merchant Name", "Where transactions occurred"},
		},
	},
	{
		Key:   "savings_accounts",
		Label: "Savings Accounts",
		Attributes: []Attribute{
			{"savings_accounts.balance", "Savings Balance", "Savings account balances"},
			{"savings_accounts.accountType", "Savings Account Type", "Type of savings account"},
			{"savings_accounts.apy", "APY", "Annual percentage yield"},
			{"savings_accounts.interestRate", "Interest Rate", "Interest rate on savings"},
		},
	},
	{
		Key:   "savings_goals",
		Label: "Savings Goals",
		Attributes: []Attribute{
			{"savings_goals.targetAmount", "Goal Target", "Target savings amounts"},
			{"savings_goals.currentAmount", "Goal Progress", "Current progress toward goals"},
			{"savings_goals.monthlyContribution", "Monthly Contribution", "Monthly savings contributions"},
			{"savings_goals.status", "Goal Status", "Status of savings goals"},
		},
	},
}

var attributeIDs = func() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, c := range catalog {
		for _, a := range c.Attributes {
			ids[a.Id] = struct{}{}
		}
	}
	return ids
}()

// Catalog returns a copy of the attribute catalog in display order.
func Catalog() []Category {
	out := make([]Category, len(catalog))
	for i, c := range catalog {
		out[i] = Category{Key: c.Key, Label: c.Label, Attributes: append([]Attribute(nil), c.Attributes...)}
	}
	return out
}

// TotalAttributes is the number of attributes in the catalog.
func TotalAttributes() int {
	return len(attributeIDs)
}

// KnownAttribute reports whether id names a catalog attribute.
func KnownAttribute(id string) bool {
	_, ok := attributeIDs[id]
	return ok
}

// DefaultPermissions allows every catalog attribute.
func DefaultPermissions() map[string]bool {
	perms := make(map[string]bool, len(attributeIDs))
	for id := range attributeIDs {
		perms[id] = true
	}
	return perms
}
