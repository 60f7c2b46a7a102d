// Package smtp подключается к почтовому серверу через STARTTLS с PLAIN-аутентификацией.
package smtp

import "io"

// Client часть *smtp.Client, которой достаточно для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает сессию с почтовым сервером.
type Dialer interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
