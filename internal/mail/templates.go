package mail

import "fmt"

func welcomeMessage(username string) (string, string) {
	subject := "Welcome to The Beauty"
	body := fmt.Sprintf(`Hello %s,

Welcome to The Beauty — your one-stop shop for stunning products!

Here's what you can expect:
- Explore handpicked skincare, makeup, and haircare
- Get exclusive offers
- Enjoy a smooth shopping experience

With love,
The Beauty Team
`, username)
	return subject, body
}

func orderConfirmationMessage(username string, orderID uint, invoiceNumber string, total float64) (string, string) {
	subject := fmt.Sprintf("Order #%d confirmed - The Beauty", orderID)
	body := fmt.Sprintf(`Hello %s,

Thank you for your order!

Order number:   %d
Invoice number: %s
Total:          %.2f

Your order is pending payment. You will receive payment instructions
shortly. We will notify you as soon as it ships.

With love,
The Beauty Team
`, username, orderID, invoiceNumber, total)
	return subject, body
}

func accountStatusMessage(username string, blocked bool) (string, string) {
	if blocked {
		subject := "Your account has been suspended - The Beauty"
		body := fmt.Sprintf(`Hello %s,

Your account has been suspended. If you believe this is a mistake,
please contact our support team.

The Beauty Team
`, username)
		return subject, body
	}
	subject := "Your account has been reactivated - The Beauty"
	body := fmt.Sprintf(`Hello %s,

Good news — your account is active again. Welcome back!

With love,
The Beauty Team
`, username)
	return subject, body
}

func managerInviteMessage(username, email, oneTimePassword string) (string, string) {
	subject := "You are now an order manager - The Beauty"
	if oneTimePassword == "" {
		body := fmt.Sprintf(`Hello %s,

Your existing account has been upgraded to order manager. Log in as
usual to access the management dashboard.

The Beauty Team
`, username)
		return subject, body
	}
	body := fmt.Sprintf(`Hello %s,

An order manager account has been created for you.

Email:    %s
Password: %s

Please log in and change this password right away.

The Beauty Team
`, username, email, oneTimePassword)
	return subject, body
}
