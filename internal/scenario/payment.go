package scenario

import (
	"fmt"
	"strings"
	"time"
)

// PaymentMethod is how a checkout is settled on the target site
type PaymentMethod string

// Payment methods
const (
	PaymentBalance PaymentMethod = "balance"
	PaymentAlipay  PaymentMethod = "alipay"
	PaymentWeChat  PaymentMethod = "wechat"
)

// AllMethods lists every supported payment method
var AllMethods = []PaymentMethod{PaymentBalance, PaymentAlipay, PaymentWeChat}

// ParsePaymentMethod parses a --payment-method value. "all" and "" expand to every method.
func ParsePaymentMethod(s string) ([]PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllMethods, nil
	case "balance", "余额":
		return []PaymentMethod{PaymentBalance}, nil
	case "alipay", "支付宝":
		return []PaymentMethod{PaymentAlipay}, nil
	case "wechat", "weixin", "微信":
		return []PaymentMethod{PaymentWeChat}, nil
	default:
		return nil, fmt.Errorf("unknown payment method %q (want balance, alipay, wechat or all)", s)
	}
}

// paymentSteps picks the method on the payment page and confirms it.
//   - balance settles in place and shows a success message
//   - alipay opens the cashier in a new tab
//   - wechat shows a QR code on the same page
func paymentSteps(method PaymentMethod) []Step {
	switch method {
	case PaymentAlipay:
		return []Step{
			{Name: "choose alipay", Kind: KindClick, Target: "payment_alipay", Pause: 500 * time.Millisecond},
			{Name: "open alipay cashier", Kind: KindPopup, Target: "pay_confirm", Want: []string{"alipay"}, Reject: []string{"failure"}},
		}
	case PaymentWeChat:
		return []Step{
			{Name: "choose wechat", Kind: KindClick, Target: "payment_wechat", Pause: 500 * time.Millisecond},
			{Name: "confirm payment", Kind: KindClick, Target: "pay_confirm", Pause: time.Second},
			{Name: "qr code shown", Kind: KindWait, Target: "wechat_qrcode"},
			{Name: "wechat prompt", Kind: KindExpect, Want: []string{"wechat"}, Reject: []string{"failure"}},
		}
	default:
		return []Step{
			{Name: "choose balance", Kind: KindClick, Target: "payment_balance", Pause: 500 * time.Millisecond},
			{Name: "confirm payment", Kind: KindClick, Target: "pay_confirm", Pause: time.Second},
			{Name: "payment succeeded", Kind: KindExpect, Want: []string{"success"}, Reject: []string{"failure", "insufficient_balance"}},
		}
	}
}
