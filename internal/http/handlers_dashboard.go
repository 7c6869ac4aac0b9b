package http

import (
	"fmt"
	"net/http"
	"time"

	"weeklyspend/internal/auth"
	"weeklyspend/internal/core"
)

type categoryRow struct {
	Category string
	Amount   string
	// Width is the bar length relative to the largest category, in percent.
	Width int
}

type dashboardData struct {
	Week        string
	Today       string
	TotalSpent  string
	TopCategory string
	Rows        []categoryRow
	HasExpenses bool
	Error       string
}

// handleDashboard renders the weekly aggregated view. A POST first records
// the submitted expense, then falls through to the same rendering.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w, "GET, POST")
		return
	}

	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	store, err := s.openStore(r.Context())
	if err != nil {
		s.internalError(w, r, "Storage unavailable", err)
		return
	}
	defer store.Close()

	var formError string
	if r.Method == http.MethodPost {
		var handled bool
		formError, handled = s.addExpense(w, r, store, userID)
		if handled {
			return
		}
	}

	selected := core.WeekOf(time.Now())
	if token := r.URL.Query().Get("week"); token != "" {
		week, err := core.ParseWeek(token)
		if err != nil {
			if formError == "" {
				formError = "Invalid week selection."
			}
		} else {
			selected = week
		}
	}

	rows, err := store.CategoryTotals(r.Context(), userID, selected.Start(), selected.End())
	if err != nil {
		s.internalError(w, r, "Aggregation failed", err)
		return
	}
	summary := core.Summarize(selected, rows)

	data := dashboardData{
		Week:        summary.Week.String(),
		Today:       time.Now().Format("2006-01-02"),
		TotalSpent:  formatAmount(summary.TotalSpent),
		TopCategory: summary.TopCategory,
		HasExpenses: len(summary.Categories) > 0,
		Error:       formError,
	}
	var maxTotal float64
	if len(summary.Categories) > 0 {
		maxTotal = summary.Categories[0].Total
	}
	for _, c := range summary.Categories {
		data.Rows = append(data.Rows, categoryRow{
			Category: c.Category,
			Amount:   formatAmount(c.Total),
			Width:    barWidth(c.Total, maxTotal),
		})
	}

	s.render(w, r, "dashboard.html", data)
}

// addExpense validates the submitted form and inserts one expense row. It
// returns a user-visible validation message (empty on success); handled is
// true when a response has already been written.
func (s *Server) addExpense(w http.ResponseWriter, r *http.Request, store Store, userID int64) (msg string, handled bool) {
	if err := r.ParseForm(); err != nil {
		return "Invalid form submission.", false
	}

	amount, err := core.ParseAmount(r.PostForm.Get("amount"))
	if err != nil {
		return "Amount must be a number.", false
	}
	date, err := core.ParseDate(r.PostForm.Get("date"))
	if err != nil {
		return "Date must be a valid YYYY-MM-DD date.", false
	}

	expense := core.Expense{
		UserID:   userID,
		Amount:   amount,
		Category: sanitizeInput(r.PostForm.Get("category")),
		Date:     date,
	}
	if err := expense.Validate(); err != nil {
		return "Category is required (max 100 characters).", false
	}

	if _, err := store.CreateExpense(r.Context(), expense); err != nil {
		s.internalError(w, r, "Expense insert failed", err)
		return "", true
	}
	return "", false
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func barWidth(total, max float64) int {
	if max <= 0 || total <= 0 {
		return 0
	}
	width := int(total/max*100 + 0.5)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}
