//go:build e2e

package e2e

import (
	"fmt"
	"html"
	"net/http"
	"sync"
)

const (
	sessionCookie = "PHPSESSID"
	packagePrice  = 30
)

// fakeShop serves just enough of the storefront, order list and admin panel
// for the built-in scenarios to run against the default catalog
type fakeShop struct {
	mu        sync.Mutex
	sessionID string
	balance   int
	paid      []string
	plans     map[string]string
	mux       *http.ServeMux
}

func newFakeShop(sessionID string) *fakeShop {
	s := &fakeShop{
		sessionID: sessionID,
		balance:   100,
		plans:     make(map[string]string),
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("/user/shop", s.packages)
	s.mux.HandleFunc("/user/checkout", s.checkout)
	s.mux.HandleFunc("/user/order", s.orders)
	s.mux.HandleFunc("/user/pay", s.pay)
	s.mux.HandleFunc("/cashier/alipay", s.alipayCashier)
	s.mux.HandleFunc("/admin/user", s.adminUsers)
	s.mux.HandleFunc("/admin/user/edit", s.adminEdit)
	s.mux.HandleFunc("/admin/user/save", s.adminSave)
	return s
}

func (s *fakeShop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	want := s.sessionID
	s.mu.Unlock()

	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value != want {
		render(w, "Sign in", `<form class="login"><input name="email"><button>Sign in</button></form>`)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *fakeShop) setBalance(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = v
}

func (s *fakeShop) setSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

func (s *fakeShop) payments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paid...)
}

func (s *fakeShop) plan(user string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plans[user]
}

func render(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title></head><body>%s</body></html>`,
		html.EscapeString(title), body)
}

func (s *fakeShop) packages(w http.ResponseWriter, r *http.Request) {
	render(w, "Packages", `
<div class="plan-card"><h3>Starter</h3><p>30 / month</p>
  <button class="plan-buy" onclick="location.href='/user/checkout?plan=1'">Buy</button></div>
<div class="plan-card"><h3>Team</h3><p>90 / month</p>
  <button class="plan-buy" onclick="location.href='/user/checkout?plan=2'">Buy</button></div>`)
}

func (s *fakeShop) checkout(w http.ResponseWriter, r *http.Request) {
	plan := html.EscapeString(r.URL.Query().Get("plan"))
	render(w, "Checkout", fmt.Sprintf(`
<h2>Plan %[1]s</h2>
<div class="period-option" onclick="this.className += ' active'">1 month</div>
<div class="period-option" onclick="this.className += ' active'">12 months</div>
<button class="checkout-submit" onclick="location.href='/user/pay?order=plan-%[1]s'">Place order</button>`, plan))
}

func (s *fakeShop) orders(w http.ResponseWriter, r *http.Request) {
	render(w, "Orders", `
<table>
  <tr class="order-paid"><td>#1000</td><td>done</td></tr>
  <tr class="order-pending"><td>#1001</td><td><button class="order-pay" onclick="location.href='/user/pay?order=1001'">Pay now</button></td></tr>
</table>`)
}

// pay shows the method picker on GET and settles the order on POST
func (s *fakeShop) pay(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		order := html.EscapeString(r.URL.Query().Get("order"))
		render(w, "Pay", fmt.Sprintf(`
<form id="payform" method="post" action="/user/pay">
  <input type="hidden" name="order" value="%[1]s">
  <label data-method="balance"><input type="radio" name="method" value="balance" checked> Account credit</label>
  <label data-method="alipay"><input type="radio" name="method" value="ali"> Cashier tab</label>
  <label data-method="wechat"><input type="radio" name="method" value="qr"> QR code</label>
  <button type="button" class="pay-confirm" onclick="confirmPay()">Confirm</button>
</form>
<script>
function confirmPay() {
  var m = document.querySelector('input[name=method]:checked').value;
  if (m === 'ali') { window.open('/cashier/alipay?order=%[1]s', '_blank'); return; }
  document.getElementById('payform').submit();
}
</script>`, order))
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order := r.FormValue("order")

	switch r.FormValue("method") {
	case "qr":
		render(w, "Scan", `<div class="qrcode"><canvas width="160" height="160" style="background:#000"></canvas></div><p>Open WeChat Pay and scan the code</p>`)
	default:
		s.mu.Lock()
		ok := s.balance >= packagePrice
		if ok {
			s.balance -= packagePrice
			s.paid = append(s.paid, order)
		}
		s.mu.Unlock()
		if !ok {
			render(w, "Pay", `<p class="error">Insufficient balance, please top up first.</p>`)
			return
		}
		render(w, "Pay", `<p class="ok">Payment successful</p>`)
	}
}

func (s *fakeShop) alipayCashier(w http.ResponseWriter, r *http.Request) {
	render(w, "支付宝 - 网上支付 安全快速", `<div class="cashier"><h1>支付宝</h1><p>Scan with the app to continue.</p></div>`)
}

func (s *fakeShop) adminUsers(w http.ResponseWriter, r *http.Request) {
	rows := ""
	if q := r.URL.Query().Get("search"); q != "" {
		rows = fmt.Sprintf(`<tr class="user-row"><td>%s</td><td><a class="user-edit" href="/admin/user/edit?email=%s">Edit</a></td></tr>`,
			html.EscapeString(q), html.EscapeString(q))
	}
	render(w, "Users", fmt.Sprintf(`
<form method="get" action="/admin/user">
  <input name="search" type="text">
  <button type="submit" class="search-submit">Search</button>
</form>
<table>%s</table>`, rows))
}

func (s *fakeShop) adminEdit(w http.ResponseWriter, r *http.Request) {
	email := html.EscapeString(r.URL.Query().Get("email"))
	render(w, "Edit user", fmt.Sprintf(`
<form method="post" action="/admin/user/save">
  <input type="hidden" name="email" value="%s">
  <select name="plan_id"><option value="0">none</option><option value="1">Starter</option><option value="2">Team</option></select>
  <input name="expired_at" type="text">
  <button type="submit" class="user-save">Save</button>
</form>`, email))
}

func (s *fakeShop) adminSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.plans[r.FormValue("email")] = r.FormValue("plan_id") + "/" + r.FormValue("expired_at")
	s.mu.Unlock()
	render(w, "Edit user", `<p class="ok">Saved successfully</p>`)
}
