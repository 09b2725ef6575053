package document

// OutputFileName derives the extraction artifact name for a source document:
// the full original file name with the "_extracted.md" suffix appended, so
// "report.pdf" becomes "report.pdf_extracted.md".
func OutputFileName(fileName string) string {
	return fileName + "_extracted.md"
}
