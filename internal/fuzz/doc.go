// Package fuzztests houses Go fuzz harnesses for the inputs keel reads from
// outside: encoded translation units and keel.toml manifests.
//
// Назначение: прогонять произвольные байты через DecodeUnit и, если unit
// принят, через полную проверку; искать паники и зависания.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
