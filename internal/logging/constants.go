package logging

// Field names shared by all log entries.
const (
	FieldFile          = "file_path"
	FieldSource        = "source"
	FieldStage         = "stage"
	FieldAccount       = "account_id"
	FieldMessage       = "message_index"
	FieldLine          = "line"
	FieldTransactionID = "transaction_id"
	FieldTag           = "tag"
	FieldStrategy      = "strategy"
	FieldField         = "field"
	FieldValue         = "value"
	FieldWorkers       = "workers"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldDelimiter     = "delimiter"
	FieldInputFile     = "input_file"
	FieldOutputFile    = "output_file"
)
