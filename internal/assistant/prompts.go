package assistant

import (
	"fmt"
	"sort"
	"strings"
)

// systemPrompt frames every assistant interaction.
const systemPrompt = "You are BudgetX AI, a financial optimization assistant. " +
	"Be concise, professional, and friendly. Base answers on provided numbers. " +
	"Format lists with dashes."

// dashboardDataInstruction asks the model to close each report with a
// machine-readable block the frontend renders as a chart.
const dashboardDataInstruction = "At the VERY END of your response, you MUST include a [DASHBOARD_DATA] section " +
	"containing a single JSON object for visualization, wrapped in [DASHBOARD_DATA]...[/DASHBOARD_DATA] markers. " +
	"The object must set \"is_financial_data\": true, a \"generic_chart_label\" string, " +
	"and an \"expense_by_category\" object mapping labels to numbers."

// reportPrompts holds the canned report templates keyed by report kind.
var reportPrompts = map[string]string{
	"risk_assessment": "You are an expert financial risk analyst. Based on the following financial analytics data, " +
		"generate a comprehensive Risk Assessment Report.\n\n" +
		"Include these sections:\n" +
		"1. **Financial Health Score** (0-100) with justification\n" +
		"2. **Liquidity Risk Analysis** - cash flow stability\n" +
		"3. **Volatility Metrics** - income/expense variability\n" +
		"4. **Emergency Fund Adequacy** - months of coverage estimate\n" +
		"5. **Concentration Risk** - expense concentration by category\n" +
		"6. **Early Warning Indicators** - 5-10 predictive risk flags\n" +
		"7. **Scenario Simulation** - 2-3 stress test scenarios\n\n" +
		"Focus the chart on: Liquidity Score vs Debt Score vs Savings Score.\n\n" +
		dashboardDataInstruction +
		"\n\nFormat with clear headers, bullet points, and specific numbers from the data. Be concise but thorough.",

	"cost_optimization": "You are a financial efficiency expert. Based on the following financial analytics data, " +
		"generate a comprehensive Cost Optimization Report.\n\n" +
		"Include these sections:\n" +
		"1. **Expense Category Breakdown** - hierarchical cost analysis\n" +
		"2. **Inefficiency Detection** - anomalies or unusual spending patterns\n" +
		"3. **Benchmark Comparison** - against typical spending profiles\n" +
		"4. **Zero-Based Budgeting Recommendations** - category-by-category review\n" +
		"5. **Subscription & Recurring Costs** - potentially reducible costs\n\n" +
		"Focus the chart on: Potential Savings per Category.\n\n" +
		dashboardDataInstruction +
		"\n\nFormat with clear headers, bullet points, and specific actionable amounts from the data.",

	"strategic_recommendations": "You are a strategic financial advisor. Based on the following financial analytics data, " +
		"generate a comprehensive Strategic Recommendations Report.\n\n" +
		"Include these sections:\n" +
		"1. **Short-term Actions (0-3 months)** - 5 quick financial wins\n" +
		"2. **Medium-term Initiatives (3-12 months)** - 5 growth opportunities\n" +
		"3. **Long-term Strategy (1-5 years)** - 3 transformational changes\n" +
		"4. **Priority Matrix** - rank recommendations by Impact vs. Effort\n" +
		"5. **SMART Goal Framework** - 3 specific, measurable financial objectives\n\n" +
		"Focus the chart on: Allocation of Strategic Efforts.\n\n" +
		dashboardDataInstruction +
		"\n\nFormat with clear headers, numbered lists, and specific timelines and metrics from the data.",

	"performance_analytics": "You are a financial performance analyst. Based on the following financial analytics data, " +
		"generate a comprehensive Performance Analytics Report.\n\n" +
		"Include these sections:\n" +
		"1. **Trend Analysis** - performance trends in the data\n" +
		"2. **Variance Analysis** - significant deviations and their causes\n" +
		"3. **Efficiency Ratios** - expense ratios, overhead percentages\n" +
		"4. **Seasonality Patterns** - cyclical patterns if visible in the data\n" +
		"5. **KPI Dashboard** - 10-15 key financial indicators with values\n\n" +
		"Focus the chart on: KPI Performance Metrics.\n\n" +
		dashboardDataInstruction +
		"\n\nFormat with clear headers, tables where appropriate, and specific numbers from the data.",

	"investment_portfolio": "You are an investment advisor and portfolio analyst. Based on the following financial analytics data, " +
		"generate a comprehensive Investment & Portfolio Strategy Report.\n\n" +
		"Include these sections:\n" +
		"1. **Asset Allocation Analysis** - current allocation and gaps\n" +
		"2. **Risk-Return Profile** - estimated risk level and expected returns\n" +
		"3. **Diversification Assessment** - concentration risks\n" +
		"4. **Rebalancing Recommendations** - allocation adjustments\n" +
		"5. **Recommended Next Steps** - prioritized action items\n\n" +
		"Focus the chart on: Target Asset Allocation.\n\n" +
		dashboardDataInstruction +
		"\n\nFormat with clear headers, bullet points, and specific recommendations based on the available data.",
}

// ReportKinds returns the valid report kinds, sorted.
func ReportKinds() []string {
	kinds := make([]string, 0, len(reportPrompts))
	for k := range reportPrompts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// IsReportKind reports whether kind names a known report template.
func IsReportKind(kind string) bool {
	_, ok := reportPrompts[kind]
	return ok
}

func buildAutoAnalysisPrompt(analyticsJSON string) string {
	return systemPrompt +
		"\n\nContext:\n" + analyticsJSON +
		"\n\nPlease provide a brief, professional summary of this data and highlight 2-3 key takeaway insights."
}

func buildChatPrompt(analyticsContext string, history []Message) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	if analyticsContext != "" {
		b.WriteString("\n\nContext:\n")
		b.WriteString(analyticsContext)
	}
	b.WriteString("\n\n")
	for _, m := range history {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func buildReportPrompt(kind, analyticsJSON, filename string, totalRows int) (string, error) {
	base, ok := reportPrompts[kind]
	if !ok {
		return "", fmt.Errorf("unknown report type: %q", kind)
	}
	return fmt.Sprintf("%s\n\n**Analytics Data:**\n```json\n%s\n```\n\nFilename: %s\nTotal rows: %d",
		base, analyticsJSON, filename, totalRows), nil
}
