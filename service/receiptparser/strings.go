package receiptparser

import "fmt"

const (
	msgParsingReceipt          = "Parsing receipt"
	msgParsingReceiptSuccess   = "Receipt parsed successfully"
	msgDataObjectIDNotFound    = "The data object identifier couldn't be found on the receipt."
	msgDecodedBase64Receipt    = "Receipt data was base64 encoded, decoded before parsing"
	msgUnknownReceiptAttribute = "Skipping unknown receipt attribute"
)

func msgParsingReceiptFailed(fileName, functionName string) string {
	return fmt.Sprintf("%s-%s: Could not parse receipt, conservatively returning true", fileName, functionName)
}
