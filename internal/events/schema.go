package events

// OrderCreatedSchema describes the record published after an order is stored.
// Amounts travel as decimal strings so no precision is lost to doubles.
const OrderCreatedSchema = `{
	"type": "record",
	"name": "OrderCreated",
	"namespace": "com.ecomall.order",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "customer_category", "type": {"type": "enum", "name": "CustomerCategory", "symbols": ["local_resident", "bulk_club"]}},
		{"name": "total_amount", "type": "string"},
		{"name": "currency", "type": "string"},
		{"name": "total_quantity", "type": "long"},
		{"name": "item_count", "type": "int"},
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`
