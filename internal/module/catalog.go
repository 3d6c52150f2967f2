package module

// 检测项目录
// https://docs.oracle.com/javase/specs/jls/se17/html/jls-11.html

type IssueData struct {
	ID          string
	Title       string
	Description string
}

var IssueDataMap = map[string]*IssueData{
	"EX-100": {
		"EX-100",
		"Uncaught Exception",
		"An exception raised by the method is not handled and escapes to the caller. The inputs below reach the throwing instruction.",
	},
	"EX-101": {
		"EX-101",
		"Division by Zero",
		"An integral division or remainder uses a divisor that can be zero, raising an ArithmeticException.",
	},
	"EX-102": {
		"EX-102",
		"Array Index Out of Bounds",
		"An array is accessed with an index outside its bounds, raising an ArrayIndexOutOfBoundsException.",
	},
	"EX-103": {
		"EX-103",
		"Null Dereference",
		"A null array reference is dereferenced, raising a NullPointerException.",
	},
	"EX-104": {
		"EX-104",
		"Negative Array Size",
		"An array is allocated with a negative length, raising a NegativeArraySizeException.",
	},
	"FP-200": {
		"FP-200",
		"Unordered Floating Comparison",
		"A floating comparison has a NaN operand. Its result is fixed by the instruction flavor rather than by the operands, which usually hides a missing NaN check.",
	},
}

// exceptionIssues maps exception classes to their issue ids.
var exceptionIssues = map[string]string{
	"java/lang/ArithmeticException":            "EX-101",
	"java/lang/ArrayIndexOutOfBoundsException": "EX-102",
	"java/lang/NullPointerException":           "EX-103",
	"java/lang/NegativeArraySizeException":     "EX-104",
}
