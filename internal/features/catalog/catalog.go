package catalog

// Catalog is the fixed set of data sources exposed to the report builder.
type Catalog struct {
	sources []DataSourceMeta
	byKey   map[string]int
}

// New returns the default CxTrack catalog.
func New() *Catalog {
	return newCatalog(defaultSources)
}

func newCatalog(sources []DataSourceMeta) *Catalog {
	c := &Catalog{sources: sources, byKey: make(map[string]int, len(sources))}
	for i, ds := range sources {
		c.byKey[ds.Key] = i
	}
	return c
}

// Sources returns every data source in catalog order.
func (c *Catalog) Sources() []DataSourceMeta {
	return c.sources
}

// Source returns the data source with the given key.
func (c *Catalog) Source(key string) (DataSourceMeta, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return DataSourceMeta{}, false
	}
	return c.sources[i], true
}

// SourceLabel returns the display label for a source key, or the key itself
// if the source is unknown.
func (c *Catalog) SourceLabel(key string) string {
	if ds, ok := c.Source(key); ok {
		return ds.Label
	}
	return key
}

var defaultSources = []DataSourceMeta{
	{
		Key: "customers", Label: "Customers", Collection: "customers",
		Fields: []FieldMeta{
			{Key: "lifetime_value", Label: "Lifetime Value", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "status", Label: "Status", Type: FieldTypeString, Groupable: true},
			{Key: "industry", Label: "Industry", Type: FieldTypeString, Groupable: true},
			{Key: "owner_name", Label: "Owner", Type: FieldTypeString, Groupable: true},
			{Key: "created_at", Label: "Created Date", Type: FieldTypeDate, Groupable: true},
		},
	},
	{
		Key: "invoices", Label: "Invoices", Collection: "invoices",
		Fields: []FieldMeta{
			{Key: "total_amount", Label: "Total Amount", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "amount_paid", Label: "Amount Paid", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "status", Label: "Status", Type: FieldTypeString, Groupable: true},
			{Key: "customer_name", Label: "Customer", Type: FieldTypeString, Groupable: true},
			{Key: "issue_date", Label: "Issue Date", Type: FieldTypeDate, Groupable: true},
			{Key: "due_date", Label: "Due Date", Type: FieldTypeDate, Groupable: true},
		},
	},
	{
		Key: "pipeline_items", Label: "Pipeline", Collection: "pipeline_items",
		Fields: []FieldMeta{
			{Key: "deal_value", Label: "Deal Value", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "stage", Label: "Stage", Type: FieldTypeString, Groupable: true},
			{Key: "probability", Label: "Probability", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "owner_name", Label: "Owner", Type: FieldTypeString, Groupable: true},
			{Key: "expected_close", Label: "Expected Close", Type: FieldTypeDate, Groupable: true},
			{Key: "created_at", Label: "Created Date", Type: FieldTypeDate, Groupable: true},
		},
	},
	{
		Key: "tasks", Label: "Tasks", Collection: "tasks",
		Fields: []FieldMeta{
			{Key: "duration_minutes", Label: "Duration", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "status", Label: "Status", Type: FieldTypeString, Groupable: true},
			{Key: "priority", Label: "Priority", Type: FieldTypeString, Groupable: true},
			{Key: "assignee_name", Label: "Assignee", Type: FieldTypeString, Groupable: true},
			{Key: "due_date", Label: "Due Date", Type: FieldTypeDate, Groupable: true},
		},
	},
	{
		Key: "calls", Label: "Calls", Collection: "calls",
		Fields: []FieldMeta{
			{Key: "duration_seconds", Label: "Call Duration", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "outcome", Label: "Outcome", Type: FieldTypeString, Groupable: true},
			{Key: "direction", Label: "Direction", Type: FieldTypeString, Groupable: true},
			{Key: "agent_name", Label: "Agent", Type: FieldTypeString, Groupable: true},
			{Key: "started_at", Label: "Call Time", Type: FieldTypeDate, Groupable: true},
		},
	},
	{
		Key: "quotes", Label: "Quotes", Collection: "quotes",
		Fields: []FieldMeta{
			{Key: "quote_amount", Label: "Quote Amount", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "status", Label: "Status", Type: FieldTypeString, Groupable: true},
			{Key: "customer_name", Label: "Customer", Type: FieldTypeString, Groupable: true},
			{Key: "valid_until", Label: "Valid Until", Type: FieldTypeDate, Groupable: true},
			{Key: "created_at", Label: "Created Date", Type: FieldTypeDate, Groupable: true},
		},
	},
	{
		Key: "expenses", Label: "Expenses", Collection: "expenses",
		Fields: []FieldMeta{
			{Key: "amount", Label: "Amount", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "category", Label: "Category", Type: FieldTypeString, Groupable: true},
			{Key: "merchant", Label: "Merchant", Type: FieldTypeString, Groupable: true},
			{Key: "submitted_by", Label: "Submitted By", Type: FieldTypeString, Groupable: true},
			{Key: "expense_date", Label: "Expense Date", Type: FieldTypeDate, Groupable: true},
		},
	},
	{
		Key: "products", Label: "Products", Collection: "products",
		Fields: []FieldMeta{
			{Key: "unit_price", Label: "Unit Price", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "stock_level", Label: "Stock Level", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "category", Label: "Category", Type: FieldTypeString, Groupable: true},
			{Key: "created_at", Label: "Created Date", Type: FieldTypeDate, Groupable: true},
		},
	},
	{
		Key: "payments", Label: "Payments", Collection: "payments", External: true,
		Fields: []FieldMeta{
			{Key: "amount", Label: "Amount", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "method", Label: "Payment Method", Type: FieldTypeString, Groupable: true},
			{Key: "status", Label: "Status", Type: FieldTypeString, Groupable: true},
			{Key: "paid_at", Label: "Payment Date", Type: FieldTypeDate, Groupable: true},
		},
	},
	{
		Key: "subscriptions", Label: "Subscriptions", Collection: "subscriptions", External: true,
		Fields: []FieldMeta{
			{Key: "mrr", Label: "Monthly Revenue", Type: FieldTypeNumber, Aggregatable: true},
			{Key: "plan", Label: "Plan", Type: FieldTypeString, Groupable: true},
			{Key: "status", Label: "Status", Type: FieldTypeString, Groupable: true},
			{Key: "started_at", Label: "Start Date", Type: FieldTypeDate, Groupable: true},
			{Key: "renews_at", Label: "Renewal Date", Type: FieldTypeDate, Groupable: true},
		},
	},
}
