package pagination

import twmerge "github.com/Oudwins/tailwind-merge-go"

const (
	buttonClass   = "inline-flex items-center justify-center min-w-9 h-9 px-3 rounded-md border border-gray-300 bg-white text-sm font-medium text-gray-700 hover:bg-gray-50"
	activeClass   = "border-blue-600 bg-blue-600 text-white hover:bg-blue-700"
	disabledClass = "bg-gray-100 text-gray-400 cursor-not-allowed hover:bg-gray-100"
)

// activeButton and disabledButton layer their state over buttonClass; later
// utilities replace conflicting ones.
func activeButton() string   { return twmerge.Merge(buttonClass, activeClass) }
func disabledButton() string { return twmerge.Merge(buttonClass, disabledClass) }
