// Package main provides localization for the compression-suite CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Deduplicate near-static recordings into unique images and rebuild them with exact timing.": "ほぼ静止した録画をユニーク画像に重複排除し、正確なタイミングで再構築します。",

		// Subcommands
		"Extract unique frames and a change timeline from a video.": "動画からユニークフレームと変化タイムラインを抽出",
		"Rebuild a video from an extracted timeline folder.":        "抽出済みタイムラインフォルダから動画を再構築",
		"Re-encode a slide recording in one pass.":                  "スライド録画をワンパスで再エンコード",
		"Show version information.":                                 "バージョン情報を表示",
		"compression-suite (Go) version %s":                         "compression-suite (Go版) バージョン %s",

		// Runtime messages
		"Interrupted, shutting down...": "中断されました。終了しています...",
		"Failed to write summary: %s":   "サマリーの書き込みに失敗しました: %s",
		"Summary written to %s":         "サマリーを %s に書き込みました",

		// Orchestrator messages
		"Extracting unique frames from %s":                             "%s からユニークフレームを抽出中",
		"Extraction failed: %s":                                        "抽出に失敗しました: %s",
		"Extracted %d changes, %d unique images (%d frames processed)": "%d 件の変化、%d 枚のユニーク画像を抽出（%d フレーム処理）",
		"Timeline written to %s":                                       "タイムラインを %s に書き込みました",
		"Reassembling %s (%s)":                                         "%s を再構築中（%s）",
		"Reassembly failed: %s":                                        "再構築に失敗しました: %s",
		"Rebuilt %d entries, %.2fs of video":                           "%d エントリ、%.2f 秒の動画を再構築しました",
		"Optimizing slide recording %s":                                "スライド録画 %s を最適化中",
		"Optimization failed: %s":                                      "最適化に失敗しました: %s",
		"Kept %d unique slides out of %d frames":                       "ユニークスライド %d 枚を保持しました（%d フレーム中）",
		"Could not verify output %s: %s":                               "出力 %s を検証できませんでした: %s",
		"Output %s has no video track":                                 "出力 %s に映像トラックがありません",
		"Output %s verified: %.2fs":                                    "出力 %s を検証しました: %.2f 秒",
	})
}
