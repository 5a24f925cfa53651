// Package store は値を弱参照で保持できるキー・バリューキャッシュを提供します。
//
// 値は次のいずれかの方法で保持されます。
//
//   - 強参照: WithHardRef(true) を指定した値、WithPrimitivesAlwaysHard() を指定したストアの、下の参照型以外の値。
//   - 参照先の弱参照: 非 nil のポインタ、マップ、チャネル。他に参照が無くなると GC が回収します。
//     パッケージ変数のようにヒープ外にある値へのポインタもそのまま Put できますが、
//     回収されることは無いので、エントリは Delete するまで残り、ファイナライザも呼ばれません。
//   - 関数: 関数値は常に強参照です。クロージャを持たない関数は読み取り専用領域にあり、
//     弱参照できないためです。
//   - box の弱参照: それ以外の値 (数値、文字列、構造体の値、スライスなど) は 1 フィールドの box に包み、
//     box を弱参照します。box は他から参照されないので、次の GC で回収されます。
//
// 値が回収されてもエントリはすぐには消えません。Get が回収済みの値を見つけたときに削除するか、
// スイーパー (WithCleanupInterval、既定 60 秒) または Sweep が削除します。
// スイーパーを有効にしたストアは、使い終わったら Release を呼んでゴルーチンを止めてください。
package store
