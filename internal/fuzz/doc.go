// Package fuzztests houses Go fuzz harnesses that exercise the front of the
// compiler (source -> lexer -> parser -> driver). Its goal is to smoke test
// robustness and guard against panics or hangs on arbitrary inputs.
//
// Назначение: загрузить байты в FileSet и прогнать их через лексер, парсер и
// CompileDirect.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
