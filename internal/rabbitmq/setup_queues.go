package rabbitmq

// QueueConfig очередь и ключ маршрутизации, с которым она привязана к Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

const (
	// ExpiringRoutingKey ключ для уведомлений об истекающих абонементах.
	ExpiringRoutingKey = "membership.expiring"
	// ExpiringQueue очередь, которую читает notifier.
	ExpiringQueue = "notifications.membership.expiring"
)

func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ExpiringQueue, RoutingKey: ExpiringRoutingKey},
	}
}
