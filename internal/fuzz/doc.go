// Package fuzztests houses Go fuzz harnesses for the front of the compilation
// (source -> lexer -> syntax.Parse -> declaration table). Its goal is to smoke
// test robustness and guard against panics or hangs on arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через лексер/парсер и создание снимка компиляции.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
