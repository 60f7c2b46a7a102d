// Package churn считает помесячный отток участников студий.
//
// Все функции пакета чистые: на вход подаётся полный список абонементов и
// момент времени now, результат каждый раз вычисляется заново. Пакет не читает
// системные часы и не хранит состояние между вызовами, поэтому его можно
// вызывать параллельно без синхронизации.
package churn

import (
	"time"

	"github.com/magabrotheeeer/studio-churn/internal/lib/month"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// Classification: принадлежность одного абонемента когортам одного месяца.
// Флаги независимы: запись может одновременно быть, например, Starting и Ending.
type Classification struct {
	Starting       bool // Абонемент начался до месяца и не закончился к его началу
	New            bool // Заказ оформлен в этом месяце
	ExpiredInMonth bool // Окончание в этом месяце и статус Expired
	Ending         bool // Абонемент действует на момент закрытия месяца
}

// Classify относит абонемент к когортам месяца b.
//
// Отток определяется по сохранённому статусу: запись с датой окончания внутри
// месяца, но со статусом Active, оттоком не считается.
func Classify(m models.Membership, b month.Boundary) Classification {
	return Classification{
		Starting:       m.OrderDate.Before(b.Start) && !m.EndDate.Before(b.Start),
		New:            b.Contains(m.OrderDate),
		ExpiredInMonth: m.Status == models.StatusExpired && b.Contains(m.EndDate),
		Ending:         m.OrderDate.Before(b.End) && !m.EndDate.Before(b.End),
	}
}

// activePastEnd сообщает, что абонемент со статусом Active уже должен был закончиться к t.
func activePastEnd(m models.Membership, t time.Time) bool {
	return m.Status == models.StatusActive && m.EndDate.Before(t)
}
